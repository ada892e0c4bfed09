package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"inboundbot/clients"
	"inboundbot/core"
	"inboundbot/models"
)

const DefaultAPIVersion = "v59.0"

type Config struct {
	LoginURL     string
	ClientID     string
	ClientSecret string
	APIVersion   string
	HTTPClient   *http.Client
}

// Client implements clients.SalesforceClient against the Salesforce REST API
type Client struct {
	tokenConfig clientcredentials.Config
	apiVersion  string
	httpClient  *http.Client
	cb          *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	cbSettings := gobreaker.Settings{
		Name:        "salesforce-api",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️ Circuit breaker %s changed from %s to %s", name, from.String(), to.String())
		},
	}

	return &Client{
		tokenConfig: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     strings.TrimRight(cfg.LoginURL, "/") + "/services/oauth2/token",
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		apiVersion: apiVersion,
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// Authenticate performs the OAuth2 client-credentials exchange
func (c *Client) Authenticate(ctx context.Context) (*clients.CRMSession, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.tokenConfig.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, fmt.Errorf("failed to obtain salesforce token: %w", parseAPIError(retrieveErr.Response.StatusCode, retrieveErr.Body))
		}
		return nil, fmt.Errorf("failed to obtain salesforce token: %w", err)
	}

	instanceURL, _ := token.Extra("instance_url").(string)
	if instanceURL == "" {
		return nil, fmt.Errorf("salesforce token response has no instance_url")
	}

	return &clients.CRMSession{
		AccessToken: token.AccessToken,
		InstanceURL: strings.TrimRight(instanceURL, "/"),
		IssuedAt:    time.Now(),
	}, nil
}

type queryResponse struct {
	clients.CRMQueryResult
	NextRecordsURL string `json:"nextRecordsUrl"`
}

// Query runs a SOQL statement and follows nextRecordsUrl until done
func (c *Client) Query(
	ctx context.Context,
	session *clients.CRMSession,
	statement string,
) (*clients.CRMQueryResult, error) {
	path := fmt.Sprintf("/services/data/%s/query?q=%s", c.apiVersion, url.QueryEscape(statement))
	result := &clients.CRMQueryResult{Records: []json.RawMessage{}}

	for path != "" {
		body, err := c.do(ctx, session, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}

		var page queryResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode query response: %w", err)
		}

		result.TotalSize = page.TotalSize
		result.Done = page.Done
		result.Records = append(result.Records, page.Records...)

		path = ""
		if !page.Done {
			path = page.NextRecordsURL
		}
	}

	return result, nil
}

type createResponse struct {
	ID      string        `json:"id"`
	Success bool          `json:"success"`
	Errors  []ErrorDetail `json:"errors"`
}

// Create inserts a record of the given object type
func (c *Client) Create(
	ctx context.Context,
	session *clients.CRMSession,
	object string,
	fields map[string]any,
) (*models.CreateResult, error) {
	path := fmt.Sprintf("/services/data/%s/sobjects/%s/", c.apiVersion, url.PathEscape(object))
	body, err := c.do(ctx, session, http.MethodPost, path, fields)
	if err != nil {
		return nil, err
	}

	var response createResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode create response: %w", err)
	}

	result := &models.CreateResult{ID: response.ID, Success: response.Success}
	for _, detail := range response.Errors {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", detail.ErrorCode, detail.Message))
	}
	return result, nil
}

// Get fetches one record by id. A missing record yields core.ErrNotFound.
func (c *Client) Get(
	ctx context.Context,
	session *clients.CRMSession,
	object, id string,
	fields []string,
) (json.RawMessage, error) {
	path := fmt.Sprintf("/services/data/%s/sobjects/%s/%s", c.apiVersion, url.PathEscape(object), url.PathEscape(id))
	if len(fields) > 0 {
		path += "?fields=" + url.QueryEscape(strings.Join(fields, ","))
	}

	body, err := c.do(ctx, session, http.MethodGet, path, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%s %s: %w", object, id, core.ErrNotFound)
		}
		return nil, err
	}
	return json.RawMessage(body), nil
}

// do sends one request through the circuit breaker. Only transport failures and
// 5xx responses count against the breaker; 4xx responses are returned as *APIError.
func (c *Client) do(
	ctx context.Context,
	session *clients.CRMSession,
	method, path string,
	payload any,
) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("salesforce session is required")
	}

	var requestBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		requestBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, session.InstanceURL+path, requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var responseBody []byte
	var clientErr error
	_, err = c.cb.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, parseAPIError(resp.StatusCode, data)
		case resp.StatusCode >= http.StatusBadRequest:
			clientErr = parseAPIError(resp.StatusCode, data)
		default:
			responseBody = data
		}
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("salesforce %s %s: %w", method, strings.SplitN(path, "?", 2)[0], err)
	}
	if clientErr != nil {
		return nil, clientErr
	}
	return responseBody, nil
}
