/*
Copyright 2025 Kobpay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kobpay/wpayz"
	"github.com/kobpay/wpayz/api/middleware"
	"github.com/kobpay/wpayz/config"
	"github.com/kobpay/wpayz/internal/apierror"
)

type Api struct {
	wpayz  *wpayz.Wpayz
	router *gin.Engine
}

// Router registers the adapter routes. The provider callback endpoints stay
// outside the secret-key guard: the provider does not hold our client key,
// and callbacks authenticate by record lookup instead.
func (a Api) Router() *gin.Engine {
	router := a.router

	router.GET("/callback", a.CallbackHealth)
	router.POST("/callback", a.HandleCallback)

	client := router.Group("/")
	conf, err := config.Fetch()
	if err == nil && conf.Server.Secure {
		client.Use(middleware.SecretKeyAuthMiddleware())
	}

	client.POST("/payment", a.CreatePayment)
	client.GET("/status", a.CheckOrderStatus)
	client.POST("/balance", a.GetBalance)

	client.POST("/withdraw", a.CreateWithdraw)
	client.GET("/withdraw/:site/:transactionId", a.CheckWithdrawStatus)

	return a.router
}

func NewAPI(w *wpayz.Wpayz) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	r.Use(middleware.RateLimitMiddleware(conf))

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{wpayz: w, router: r}
}

// handleError translates service errors into HTTP responses. Anything that
// is not an APIError is treated as an internal failure.
func handleError(c *gin.Context, err error) {
	if apiErr, ok := err.(apierror.APIError); ok {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": apiErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
