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

	model2 "github.com/kobpay/wpayz/api/model"

	"github.com/gin-gonic/gin"
)

func (a Api) CreateWithdraw(c *gin.Context) {
	var newWithdraw model2.CreateWithdraw
	if err := c.ShouldBindJSON(&newWithdraw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := newWithdraw.ValidateCreateWithdraw()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.wpayz.CreateWithdrawal(c.Request.Context(), newWithdraw.ToWithdrawRequest())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) CheckWithdrawStatus(c *gin.Context) {
	site, passed := c.Params.Get("site")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site is required. pass site in the route /:site/:transactionId"})
		return
	}
	transactionID, passed := c.Params.Get("transactionId")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transactionId is required. pass transactionId in the route /:site/:transactionId"})
		return
	}

	resp, err := a.wpayz.CheckWithdrawalStatus(c.Request.Context(), site, transactionID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
