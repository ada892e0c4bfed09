package crmsession

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/mo"

	"inboundbot/clients"
	"inboundbot/clients/salesforce"
	"inboundbot/models"
)

const DefaultMaxAge = 90 * time.Minute

type Config struct {
	// MaxAge is how long a session is trusted; kept below the provider's token lifetime
	MaxAge time.Duration
	// ResellerAccountName is the account looked up once and referenced as the billing account
	ResellerAccountName string
}

// Manager owns at most one live Salesforce session per process
type Manager struct {
	client              clients.SalesforceClient
	maxAge              time.Duration
	resellerAccountName string
	now                 func() time.Time

	sessionMu sync.Mutex
	session   *clients.CRMSession

	billingMu        sync.Mutex
	billingAccountID mo.Option[string]
}

func NewManager(client clients.SalesforceClient, cfg Config) *Manager {
	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Manager{
		client:              client,
		maxAge:              maxAge,
		resellerAccountName: cfg.ResellerAccountName,
		now:                 time.Now,
		billingAccountID:    mo.None[string](),
	}
}

// EnsureSession returns the cached session or authenticates a new one when none exists or it is stale
func (m *Manager) EnsureSession(ctx context.Context) (*clients.CRMSession, error) {
	m.sessionMu.Lock()
	if m.session != nil && m.now().Sub(m.session.IssuedAt) < m.maxAge {
		session := m.session
		m.sessionMu.Unlock()
		return session, nil
	}

	log.Printf("🔑 Authenticating with Salesforce")
	session, err := m.client.Authenticate(ctx)
	if err != nil {
		m.sessionMu.Unlock()
		log.Printf("❌ Failed to authenticate with Salesforce: %v", err)
		return nil, fmt.Errorf("failed to authenticate with salesforce: %w", err)
	}
	if session.IssuedAt.IsZero() {
		session.IssuedAt = m.now()
	}
	m.session = session
	m.sessionMu.Unlock()
	log.Printf("✅ Salesforce session established for %s", session.InstanceURL)

	m.cacheBillingAccountID(ctx, session)
	return session, nil
}

// Invalidate drops the cached session if it is still the given one
func (m *Manager) Invalidate(session *clients.CRMSession) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
	if session == nil || m.session == session {
		m.session = nil
	}
}

// Query runs a SOQL statement, re-authenticating once if the session expired
func (m *Manager) Query(ctx context.Context, statement string) (*clients.CRMQueryResult, error) {
	var result *clients.CRMQueryResult
	err := m.withSessionRetry(ctx, "query", func(session *clients.CRMSession) error {
		var err error
		result, err = m.client.Query(ctx, session, statement)
		return err
	})
	return result, err
}

// Create inserts a record, re-authenticating once if the session expired
func (m *Manager) Create(ctx context.Context, object string, fields map[string]any) (*models.CreateResult, error) {
	var result *models.CreateResult
	err := m.withSessionRetry(ctx, "create "+object, func(session *clients.CRMSession) error {
		var err error
		result, err = m.client.Create(ctx, session, object, fields)
		return err
	})
	return result, err
}

// Get fetches a record by id, re-authenticating once if the session expired
func (m *Manager) Get(ctx context.Context, object, id string, fields []string) (json.RawMessage, error) {
	var result json.RawMessage
	err := m.withSessionRetry(ctx, "get "+object, func(session *clients.CRMSession) error {
		var err error
		result, err = m.client.Get(ctx, session, object, id, fields)
		return err
	})
	return result, err
}

// BillingAccountID returns the cached reseller account id, if it was found
func (m *Manager) BillingAccountID() mo.Option[string] {
	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	return m.billingAccountID
}

// InstanceURL returns the instance URL of the current session, or "" before the first login
func (m *Manager) InstanceURL() string {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.InstanceURL
}

func (m *Manager) withSessionRetry(
	ctx context.Context,
	operation string,
	fn func(session *clients.CRMSession) error,
) error {
	for attempt := 1; ; attempt++ {
		session, err := m.EnsureSession(ctx)
		if err != nil {
			return err
		}

		err = fn(session)
		if err == nil {
			return nil
		}
		if attempt > 1 || !salesforce.IsSessionExpired(err) {
			return err
		}

		log.Printf("⚠️ Salesforce session expired during %s, re-authenticating", operation)
		m.Invalidate(session)
	}
}

// cacheBillingAccountID resolves the reseller account once per process. A failed
// lookup leaves the cache unset so the next login tries again.
func (m *Manager) cacheBillingAccountID(ctx context.Context, session *clients.CRMSession) {
	if m.resellerAccountName == "" {
		return
	}

	m.billingMu.Lock()
	defer m.billingMu.Unlock()
	if m.billingAccountID.IsPresent() {
		return
	}

	statement, err := salesforce.Build(salesforce.Select("Id").
		From(salesforce.ObjectAccount).
		Where(sq.Eq{"Name": m.resellerAccountName}).
		Limit(1))
	if err != nil {
		log.Printf("❌ Failed to build reseller account lookup: %v", err)
		return
	}

	result, err := m.client.Query(ctx, session, statement)
	if err != nil {
		log.Printf("⚠️ Failed to look up reseller account %q: %v", m.resellerAccountName, err)
		return
	}
	accounts, err := clients.DecodeRecords[salesforce.AccountRecord](result.Records)
	if err != nil || len(accounts) == 0 {
		log.Printf("⚠️ Reseller account %q not found - opportunities will omit the billing account", m.resellerAccountName)
		return
	}

	m.billingAccountID = mo.Some(accounts[0].ID)
	log.Printf("💰 Cached reseller billing account %s", accounts[0].ID)
}
