// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bitmark-inc/tranched/node"
	"github.com/bitmark-inc/tranched/projection"
)

func (a *API) handleMe(c *gin.Context) {
	self, name := a.node.Me()
	if "" == name {
		name = self.String()
	}
	c.JSON(http.StatusOK, gin.H{"me": name})
}

func (a *API) handlePeers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"peers": a.node.Peers()})
}

func (a *API) handleTranches(c *gin.Context) {
	tranches, err := a.node.Tranches()
	if nil != err {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, tranches)
}

func (a *API) handleBalances(c *gin.Context) {
	balances, err := a.node.Balances()
	if nil != err {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

func (a *API) handleIssue(c *gin.Context) {
	var request node.IssueRequest
	if err := c.ShouldBindJSON(&request); nil != err {
		c.String(http.StatusBadRequest, "Invalid request.")
		return
	}
	respond(c, a.node.Issue(c.Request.Context(), request))
}

func (a *API) handleTransfer(c *gin.Context) {
	var request node.TransferRequest
	if err := c.ShouldBindJSON(&request); nil != err {
		c.String(http.StatusBadRequest, "Invalid request.")
		return
	}
	respond(c, a.node.Transfer(c.Request.Context(), request))
}

func respond(c *gin.Context, outcome node.Outcome) {
	if outcome.Committed {
		c.String(http.StatusCreated, outcome.Message())
		return
	}
	c.String(http.StatusBadRequest, outcome.Message())
}

func (a *API) handleReportTranches(c *gin.Context) {
	filter, ok := a.filter(c)
	if !ok {
		return
	}
	rows, err := a.reports.Tranches(c.Request.Context(), filter)
	if nil != err {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *API) handleReportBalances(c *gin.Context) {
	filter, ok := a.filter(c)
	if !ok {
		return
	}
	rows, err := a.reports.Balances(c.Request.Context(), filter)
	if nil != err {
		a.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// query: reference, owner (account), consumed=true for history
func (a *API) filter(c *gin.Context) (projection.Filter, bool) {
	if nil == a.reports {
		c.String(http.StatusNotFound, "Reports are not enabled.")
		return projection.Filter{}, false
	}
	filter := projection.Filter{
		ReferenceNumber: c.Query("reference"),
		Owner:           c.Query("owner"),
	}
	if consumed := c.Query("consumed"); "" != consumed {
		b, err := strconv.ParseBool(consumed)
		if nil != err {
			c.String(http.StatusBadRequest, "Invalid request.")
			return projection.Filter{}, false
		}
		filter.IncludeConsumed = b
	}
	return filter, true
}

func (a *API) internalError(c *gin.Context, err error) {
	a.log.Errorf("%s  error: %s", c.FullPath(), err)
	c.String(http.StatusInternalServerError, "Request failed.")
}
