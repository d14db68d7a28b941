package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hireflow/onboarding/internal/config"
	"github.com/hireflow/onboarding/internal/logging"
	"github.com/hireflow/onboarding/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayStub struct {
	authCalls int32
	sendCalls int32
	lastSend  sendRequest
	sendCode  int
	sendBody  string
}

func newGatewayServer(t *testing.T, stub *gatewayStub) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&stub.authCalls, 1)
		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "svc-onboarding", creds["username"])
		json.NewEncoder(w).Encode(authResponse{Token: "tok-123"})
	})
	mux.HandleFunc("/messages/send", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&stub.sendCalls, 1)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&stub.lastSend))
		if stub.sendCode != 0 {
			w.WriteHeader(stub.sendCode)
			w.Write([]byte(stub.sendBody))
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestDispatcher(t *testing.T, stub *gatewayStub) *MailGatewayDispatcher {
	t.Helper()
	require.NoError(t, logging.InitLogger())
	server := newGatewayServer(t, stub)
	cfg := &config.Config{
		MailGatewayBaseURL:  server.URL,
		MailGatewayUsername: "svc-onboarding",
		MailGatewayPassword: "secret",
		MailFromAddress:     "hr@hireflow.dev",
	}
	return NewMailGatewayDispatcher(cfg, nil)
}

func TestDispatch(t *testing.T) {
	stub := &gatewayStub{}
	d := newTestDispatcher(t, stub)

	err := d.Dispatch(context.Background(), models.Communication{
		CandidateID: "c-1",
		To:          "asha@example.com",
		Kind:        models.KindProvisionalOffer,
		Vars:        map[string]string{"name": "Asha Verma"},
	})
	require.NoError(t, err)

	assert.EqualValues(t, 1, stub.authCalls)
	assert.EqualValues(t, 1, stub.sendCalls)
	assert.Equal(t, "hr@hireflow.dev", stub.lastSend.From)
	assert.Equal(t, "asha@example.com", stub.lastSend.To)
	assert.Equal(t, "Provisional Offer - HireFlow", stub.lastSend.Subject)
	assert.Contains(t, stub.lastSend.HTML, "Asha Verma")
}

func TestDispatch_GatewayError(t *testing.T) {
	stub := &gatewayStub{
		sendCode: http.StatusBadRequest,
		sendBody: `{"statusCode":400,"message":"recipient rejected"}`,
	}
	d := newTestDispatcher(t, stub)

	err := d.Dispatch(context.Background(), models.Communication{
		CandidateID: "c-1",
		To:          "asha@example.com",
		Kind:        models.KindFinalOffer,
		Vars:        map[string]string{"name": "Asha Verma"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recipient rejected")
}

func TestDispatch_ValidationBeforeNetwork(t *testing.T) {
	stub := &gatewayStub{}
	d := newTestDispatcher(t, stub)

	err := d.Dispatch(context.Background(), models.Communication{
		To:   "asha@example.com",
		Kind: models.TemplateKind("carrier_pigeon"),
	})
	assert.ErrorIs(t, err, models.ErrInvalidKind)

	err = d.Dispatch(context.Background(), models.Communication{
		Kind: models.KindFinalOffer,
	})
	assert.ErrorIs(t, err, models.ErrMissingContact)

	assert.Zero(t, stub.authCalls)
	assert.Zero(t, stub.sendCalls)
}
