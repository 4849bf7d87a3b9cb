// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package api - REST access to a node under /api/tranche
//
// reads return JSON; issue and transfer return 201 with the committed
// transaction message or 400 with the rejection reason as plain text
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/tranched/account"
	"github.com/bitmark-inc/tranched/node"
	"github.com/bitmark-inc/tranched/projection"
)

// Prefix - root of every route
const Prefix = "/api/tranche"

// Node - the operations of the local party
type Node interface {
	Issue(ctx context.Context, request node.IssueRequest) node.Outcome
	Transfer(ctx context.Context, request node.TransferRequest) node.Outcome
	Tranches() ([]node.TrancheView, error)
	Balances() ([]node.BalanceView, error)
	Me() (*account.Account, string)
	Peers() []string
}

// Reports - queries over the projection, including history
type Reports interface {
	Tranches(ctx context.Context, filter projection.Filter) ([]projection.TrancheRow, error)
	Balances(ctx context.Context, filter projection.Filter) ([]projection.BalanceRow, error)
}

// API - the route handlers
type API struct {
	log     *logger.L
	node    Node
	reports Reports
	allow   map[string][]*net.IPNet
	engine  *gin.Engine
}

// New - build the router; reports may be nil when no projection is
// configured and allow restricts routes to client networks
func New(log *logger.L, n Node, reports Reports, allow map[string][]*net.IPNet) *API {
	gin.SetMode(gin.ReleaseMode)

	a := &API{
		log:     log,
		node:    n,
		reports: reports,
		allow:   allow,
		engine:  gin.New(),
	}
	a.engine.Use(gin.Recovery(), a.logRequest, a.allowed)
	a.routes()
	return a
}

// Handler - for an http.Server
func (a *API) Handler() http.Handler {
	return a.engine
}

func (a *API) routes() {
	g := a.engine.Group(Prefix)
	{
		g.GET("/me", a.handleMe)
		g.GET("/peers", a.handlePeers)
		g.GET("/tranches", a.handleTranches)
		g.GET("/balances", a.handleBalances)
		g.PUT("/issue", a.handleIssue)
		g.PUT("/transfer", a.handleTransfer)

		g.GET("/reports/tranches", a.handleReportTranches)
		g.GET("/reports/balances", a.handleReportBalances)
	}
}

func (a *API) logRequest(c *gin.Context) {
	start := time.Now()
	c.Next()
	a.log.Infof("%s %s  from: %s  status: %d  time: %s", c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Writer.Status(), time.Since(start))
}

// a route listed in allow only accepts clients from those networks
func (a *API) allowed(c *gin.Context) {
	networks, ok := a.allow[c.FullPath()]
	if !ok {
		c.Next()
		return
	}
	ip := net.ParseIP(c.ClientIP())
	for _, n := range networks {
		if nil != ip && n.Contains(ip) {
			c.Next()
			return
		}
	}
	a.log.Warnf("forbidden: %s  from: %s", c.FullPath(), c.ClientIP())
	c.AbortWithStatus(http.StatusForbidden)
}
