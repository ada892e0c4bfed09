package salesforce

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inboundbot/clients"
	"inboundbot/core"
)

func setupSalesforceServer(t *testing.T, handler http.HandlerFunc) (*Client, *clients.CRMSession) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Config{
		LoginURL:     server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})
	session := &clients.CRMSession{AccessToken: "token-123", InstanceURL: server.URL}
	return client, session
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestAuthenticate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var server *httptest.Server
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/services/oauth2/token", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
			assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
			writeJSON(w, http.StatusOK, `{"access_token":"token-123","instance_url":"`+server.URL+`/","token_type":"Bearer"}`)
		}))
		defer server.Close()

		client := NewClient(Config{LoginURL: server.URL + "/", ClientID: "client-id", ClientSecret: "client-secret"})
		session, err := client.Authenticate(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "token-123", session.AccessToken)
		assert.Equal(t, server.URL, session.InstanceURL)
		assert.False(t, session.IssuedAt.IsZero())
	})

	t.Run("Error_InvalidClient", func(t *testing.T) {
		client, _ := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `{"error":"invalid_client","error_description":"invalid client credentials"}`)
		})

		_, err := client.Authenticate(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to obtain salesforce token")
		assert.Contains(t, err.Error(), "invalid_client")
	})

	t.Run("Error_MissingInstanceURL", func(t *testing.T) {
		client, _ := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"access_token":"token-123","token_type":"Bearer"}`)
		})

		_, err := client.Authenticate(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no instance_url")
	})
}

func TestQuery(t *testing.T) {
	t.Run("Success_FollowsNextRecordsURL", func(t *testing.T) {
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			switch r.URL.Path {
			case "/services/data/v59.0/query":
				assert.Equal(t, "SELECT Id FROM Account", r.URL.Query().Get("q"))
				writeJSON(w, http.StatusOK, `{"totalSize":2,"done":false,"nextRecordsUrl":"/services/data/v59.0/query/01gA-1","records":[{"Id":"001A"}]}`)
			case "/services/data/v59.0/query/01gA-1":
				writeJSON(w, http.StatusOK, `{"totalSize":2,"done":true,"records":[{"Id":"001B"}]}`)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		result, err := client.Query(context.Background(), session, "SELECT Id FROM Account")

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalSize)
		assert.True(t, result.Done)
		records, err := clients.DecodeRecords[AccountRecord](result.Records)
		require.NoError(t, err)
		assert.Equal(t, []AccountRecord{{ID: "001A"}, {ID: "001B"}}, records)
	})

	t.Run("Error_SessionExpired", func(t *testing.T) {
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, `[{"message":"Session expired or invalid","errorCode":"INVALID_SESSION_ID"}]`)
		})

		_, err := client.Query(context.Background(), session, "SELECT Id FROM Account")

		require.Error(t, err)
		assert.True(t, IsSessionExpired(err))
	})

	t.Run("Error_NoSession", func(t *testing.T) {
		client, _ := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := client.Query(context.Background(), nil, "SELECT Id FROM Account")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "session is required")
	})
}

func TestCreate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/services/data/v59.0/sobjects/Opportunity/", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			var fields map[string]any
			assert.NoError(t, json.Unmarshal(body, &fields))
			assert.Equal(t, "Acme - Inbound", fields["Name"])
			writeJSON(w, http.StatusCreated, `{"id":"006A","success":true,"errors":[]}`)
		})

		result, err := client.Create(context.Background(), session, ObjectOpportunity, map[string]any{"Name": "Acme - Inbound"})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "006A", result.ID)
		assert.Empty(t, result.Errors)
	})

	t.Run("Error_InvalidField", func(t *testing.T) {
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, `[{"message":"No such column 'Deployment_Type__c' on sobject of type Opportunity","errorCode":"INVALID_FIELD"}]`)
		})

		_, err := client.Create(context.Background(), session, ObjectOpportunity, map[string]any{"Deployment_Type__c": "Cloud"})

		require.Error(t, err)
		assert.True(t, IsInvalidField(err))
		assert.False(t, IsSessionExpired(err))
	})
}

func TestGet(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/services/data/v59.0/sobjects/Contact/003A", r.URL.Path)
			assert.Equal(t, "Id,Name", r.URL.Query().Get("fields"))
			writeJSON(w, http.StatusOK, `{"Id":"003A","Name":"Jane Doe"}`)
		})

		raw, err := client.Get(context.Background(), session, ObjectContact, "003A", []string{"Id", "Name"})

		require.NoError(t, err)
		var record ContactRecord
		require.NoError(t, json.Unmarshal(raw, &record))
		assert.Equal(t, "Jane Doe", record.Name)
	})

	t.Run("NotFound", func(t *testing.T) {
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, `[{"message":"The requested resource does not exist","errorCode":"NOT_FOUND"}]`)
		})

		_, err := client.Get(context.Background(), session, ObjectContact, "003A", nil)

		require.Error(t, err)
		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestCircuitBreaker(t *testing.T) {
	t.Run("OpensAfterConsecutiveServerErrors", func(t *testing.T) {
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, `[{"message":"down","errorCode":"SERVER_UNAVAILABLE"}]`)
		})

		for i := 0; i < 6; i++ {
			_, err := client.Query(context.Background(), session, "SELECT Id FROM Account")
			require.Error(t, err)
		}
		_, err := client.Query(context.Background(), session, "SELECT Id FROM Account")

		require.Error(t, err)
		assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	})

	t.Run("ClientErrorsDoNotTrip", func(t *testing.T) {
		calls := 0
		client, session := setupSalesforceServer(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls <= 10 {
				writeJSON(w, http.StatusBadRequest, `[{"message":"bad","errorCode":"MALFORMED_QUERY"}]`)
				return
			}
			writeJSON(w, http.StatusOK, `{"totalSize":0,"done":true,"records":[]}`)
		})

		for i := 0; i < 10; i++ {
			_, err := client.Query(context.Background(), session, "SELECT Id FROM Account")
			require.Error(t, err)
		}
		result, err := client.Query(context.Background(), session, "SELECT Id FROM Account")

		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalSize)
	})
}
