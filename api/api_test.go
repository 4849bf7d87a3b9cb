// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package api_test

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/tranched/api"
	"github.com/bitmark-inc/tranched/api/mocks"
	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/merkle"
	"github.com/bitmark-inc/tranched/node"
	"github.com/bitmark-inc/tranched/projection"
	"github.com/bitmark-inc/tranched/rpc/fixtures"
	"github.com/bitmark-inc/tranched/testing/fixture"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	result := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(result)
}

func request(a *api.API, method string, path string, body interface{}) *httptest.ResponseRecorder {
	var data []byte
	if nil != body {
		data, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestMe(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := mocks.NewMockNode(ctl)
	n.EXPECT().Me().Return(fixture.Agent, "Agent").Times(1)

	a := api.New(logger.New(fixtures.LogCategory), n, nil, nil)
	rec := request(a, http.MethodGet, "/api/tranche/me", nil)

	assert.Equal(t, http.StatusOK, rec.Code, "wrong status")
	assert.JSONEq(t, `{"me":"Agent"}`, rec.Body.String(), "wrong body")
}

func TestPeers(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := mocks.NewMockNode(ctl)
	n.EXPECT().Peers().Return([]string{"Buyer", "Other"}).Times(1)

	a := api.New(logger.New(fixtures.LogCategory), n, nil, nil)
	rec := request(a, http.MethodGet, "/api/tranche/peers", nil)

	assert.Equal(t, http.StatusOK, rec.Code, "wrong status")
	assert.JSONEq(t, `{"peers":["Buyer","Other"]}`, rec.Body.String(), "wrong body")
}

func TestTranches(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	views := []node.TrancheView{{Agent: "Agent", Owner: "Buyer", Available: "400.00"}}
	n := mocks.NewMockNode(ctl)
	n.EXPECT().Tranches().Return(views, nil).Times(1)

	a := api.New(logger.New(fixtures.LogCategory), n, nil, nil)
	rec := request(a, http.MethodGet, "/api/tranche/tranches", nil)

	assert.Equal(t, http.StatusOK, rec.Code, "wrong status")
	var got []node.TrancheView
	assert.Nil(t, json.Unmarshal(rec.Body.Bytes(), &got), "decode")
	assert.Equal(t, views, got, "wrong tranches")
}

func TestBalancesFailure(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	n := mocks.NewMockNode(ctl)
	n.EXPECT().Balances().Return(nil, fault.ErrInvalidStateRecord).Times(1)

	a := api.New(logger.New(fixtures.LogCategory), n, nil, nil)
	rec := request(a, http.MethodGet, "/api/tranche/balances", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code, "wrong status")
}

func TestIssueCommitted(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	txId := merkle.NewDigest([]byte("issued"))
	body := node.IssueRequest{
		Terms:  fixture.Terms("T-1"),
		Amount: "1000.00",
	}
	n := mocks.NewMockNode(ctl)
	n.EXPECT().Issue(gomock.Any(), body).Return(node.Outcome{Committed: true, TxId: txId}).Times(1)

	a := api.New(logger.New(fixtures.LogCategory), n, nil, nil)
	rec := request(a, http.MethodPut, "/api/tranche/issue", body)

	assert.Equal(t, http.StatusCreated, rec.Code, "wrong status")
	assert.Equal(t, "Transaction id "+txId.String()+" committed to ledger.", rec.Body.String(), "wrong body")
}

func TestTransferRejected(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	body := node.TransferRequest{
		StateId:  "8f0c1f7e-2f5e-4a53-9f0f-4d1b3c3a5b6c",
		NewOwner: "Nobody",
		Amount:   "1.00",
	}
	n := mocks.NewMockNode(ctl)
	n.EXPECT().Transfer(gomock.Any(), body).Return(node.Outcome{Reason: fault.ErrPartyNotFound.Error()}).Times(1)

	a := api.New(logger.New(fixtures.LogCategory), n, nil, nil)
	rec := request(a, http.MethodPut, "/api/tranche/transfer", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code, "wrong status")
	assert.Equal(t, fault.ErrPartyNotFound.Error(), rec.Body.String(), "wrong body")
}

func TestIssueBadBody(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	a := api.New(logger.New(fixtures.LogCategory), mocks.NewMockNode(ctl), nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/tranche/issue", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, "wrong status")
}

func TestReports(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	rows := []projection.TrancheRow{{LinearId: "id-1", Available: 40000, Consumed: true}}
	r := mocks.NewMockReports(ctl)
	r.EXPECT().Tranches(gomock.Any(), projection.Filter{
		ReferenceNumber: "T-1",
		IncludeConsumed: true,
	}).Return(rows, nil).Times(1)

	a := api.New(logger.New(fixtures.LogCategory), mocks.NewMockNode(ctl), r, nil)
	rec := request(a, http.MethodGet, "/api/tranche/reports/tranches?reference=T-1&consumed=true", nil)

	assert.Equal(t, http.StatusOK, rec.Code, "wrong status")
	var got []projection.TrancheRow
	assert.Nil(t, json.Unmarshal(rec.Body.Bytes(), &got), "decode")
	assert.Equal(t, rows, got, "wrong rows")

	rec = request(a, http.MethodGet, "/api/tranche/reports/balances?consumed=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "bad flag")
}

func TestReportsDisabled(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	a := api.New(logger.New(fixtures.LogCategory), mocks.NewMockNode(ctl), nil, nil)
	rec := request(a, http.MethodGet, "/api/tranche/reports/balances", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code, "wrong status")
}

func TestAllow(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	_, loopback, _ := net.ParseCIDR("127.0.0.1/32")
	allow := map[string][]*net.IPNet{
		"/api/tranche/issue": {loopback},
	}
	n := mocks.NewMockNode(ctl)
	n.EXPECT().Peers().Return([]string{}).Times(1)

	a := api.New(logger.New(fixtures.LogCategory), n, nil, allow)

	// httptest requests come from 192.0.2.1
	rec := request(a, http.MethodPut, "/api/tranche/issue", node.IssueRequest{})
	assert.Equal(t, http.StatusForbidden, rec.Code, "issue allowed")

	rec = request(a, http.MethodGet, "/api/tranche/peers", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "unrestricted route")
}
