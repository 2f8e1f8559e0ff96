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
	"github.com/sirupsen/logrus"

	"github.com/kobpay/wpayz/internal/apierror"
	"github.com/kobpay/wpayz/model"
)

// CallbackHealth lets the provider probe the callback endpoint.
func (a Api) CallbackHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HandleCallback receives provider notifications. The provider retries any
// non-2xx response, so everything except a malformed body or an invalid
// state transition is acknowledged; internal failures are logged and acked,
// and the record is reconciled later through the provider transaction
// queries.
func (a Api) HandleCallback(c *gin.Context) {
	var event model.CallbackEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.wpayz.RouteCallback(c.Request.Context(), &event); err != nil {
		if apierror.Is(err, apierror.ErrInvalidInput) || apierror.Is(err, apierror.ErrBadRequest) {
			handleError(c, err)
			return
		}
		logrus.Errorf("callback %s/%s processing failed: %v", event.PaymentID, event.TransactionID, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
