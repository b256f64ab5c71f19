package rfps

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	"github.com/procureflow/procureflow-backend/pkg/types"
)

func setupRFPTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	for _, table := range []string{"proposals", "rfp_vendors", "rfp_items", "rfps", "vendors"} {
		require.NoError(t, db.Exec("DROP TABLE IF EXISTS "+table).Error)
	}

	rfps := `
CREATE TABLE rfps (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  title TEXT NOT NULL,
  raw_input TEXT NOT NULL,
  description TEXT,
  budget TEXT,
  currency TEXT NOT NULL DEFAULT 'USD',
  delivery_days INTEGER,
  payment_terms TEXT,
  warranty_months INTEGER,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  created_at DATETIME,
  updated_at DATETIME
);`
	rfpItems := `
CREATE TABLE rfp_items (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  rfp_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  quantity INTEGER NOT NULL DEFAULT 1,
  specifications TEXT,
  created_at DATETIME
);`
	rfpVendors := `
CREATE TABLE rfp_vendors (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  rfp_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  sent_at DATETIME,
  status TEXT NOT NULL,
  UNIQUE (rfp_id, vendor_id)
);`
	proposals := `
CREATE TABLE proposals (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  rfp_id TEXT NOT NULL,
  vendor_id TEXT NOT NULL,
  raw_email TEXT NOT NULL,
  raw_subject TEXT,
  parsed_data TEXT,
  total_price TEXT,
  unit_prices TEXT,
  delivery_days INTEGER,
  warranty TEXT,
  payment_terms TEXT,
  ai_score INTEGER,
  ai_summary TEXT,
  ai_strengths TEXT,
  ai_weaknesses TEXT,
  received_at DATETIME,
  UNIQUE (rfp_id, vendor_id)
);`
	vendors := `
CREATE TABLE vendors (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  contact_person TEXT,
  phone TEXT,
  address TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{rfps, rfpItems, rfpVendors, proposals, vendors} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newRFP(t *testing.T, db *gorm.DB, title string, status enums.RFPStatus) *models.RFP {
	t.Helper()

	rfp := &models.RFP{
		ID:       uuid.New(),
		Title:    title,
		RawInput: "need " + title,
		Currency: "USD",
		Status:   status,
	}
	require.NoError(t, db.Create(rfp).Error)
	return rfp
}

func TestRepositoryCreatePersistsItems(t *testing.T) {
	db := setupRFPTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rfp := &models.RFP{
		ID:       uuid.New(),
		Title:    "Office Laptops",
		RawInput: "We need 50 laptops for the new office",
		Currency: "USD",
		Status:   enums.RFPStatusDraft,
		Items: []models.RFPItem{
			{
				ID:             uuid.New(),
				Name:           "Laptop",
				Quantity:       50,
				Specifications: types.SpecMap{"ram": "16GB"},
			},
			{
				ID:       uuid.New(),
				Name:     "Docking station",
				Quantity: 50,
			},
		},
	}
	require.NoError(t, repo.Create(ctx, rfp))

	stored, err := repo.FindByID(ctx, rfp.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 2)
	assert.Equal(t, rfp.ID, stored.Items[0].RFPID)
	assert.Equal(t, enums.RFPStatusDraft, stored.Status)
}

func TestRepositoryAdvanceStatusForwardOnly(t *testing.T) {
	db := setupRFPTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rfp := newRFP(t, db, "Office Laptops", enums.RFPStatusDraft)

	require.NoError(t, repo.AdvanceStatus(ctx, rfp.ID, enums.RFPStatusSent))
	stored, err := repo.FindByID(ctx, rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RFPStatusSent, stored.Status)

	// a backward request is silently ignored
	require.NoError(t, repo.AdvanceStatus(ctx, rfp.ID, enums.RFPStatusDraft))
	stored, err = repo.FindByID(ctx, rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RFPStatusSent, stored.Status)

	require.NoError(t, repo.AdvanceStatus(ctx, rfp.ID, enums.RFPStatusAwarded))
	stored, err = repo.FindByID(ctx, rfp.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RFPStatusAwarded, stored.Status)
}

func TestRepositoryAdvanceStatusUnknownRFP(t *testing.T) {
	db := setupRFPTestDB(t)
	repo := NewRepository(db)

	err := repo.AdvanceStatus(context.Background(), uuid.New(), enums.RFPStatusSent)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindDetailed(t *testing.T) {
	db := setupRFPTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rfp := newRFP(t, db, "Office Laptops", enums.RFPStatusSent)
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme Supplies", Email: "sales@acme.test"}
	require.NoError(t, db.Create(vendor).Error)

	sentAt := time.Now()
	dispatch := &models.RFPVendor{
		ID:       uuid.New(),
		RFPID:    rfp.ID,
		VendorID: vendor.ID,
		SentAt:   &sentAt,
		Status:   enums.DispatchStatusSent,
	}
	require.NoError(t, db.Create(dispatch).Error)
	proposal := &models.Proposal{
		ID:       uuid.New(),
		RFPID:    rfp.ID,
		VendorID: vendor.ID,
		RawEmail: "quote attached",
	}
	require.NoError(t, db.Create(proposal).Error)

	detailed, err := repo.FindDetailed(ctx, rfp.ID)
	require.NoError(t, err)
	require.Len(t, detailed.RFPVendors, 1)
	require.NotNil(t, detailed.RFPVendors[0].Vendor)
	assert.Equal(t, "Acme Supplies", detailed.RFPVendors[0].Vendor.Name)
	require.Len(t, detailed.Proposals, 1)
	require.NotNil(t, detailed.Proposals[0].Vendor)
}

func TestRepositoryDeleteReportsExistence(t *testing.T) {
	db := setupRFPTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rfp := newRFP(t, db, "Office Laptops", enums.RFPStatusDraft)

	deleted, err := repo.Delete(ctx, rfp.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
}
