package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naijacare/internal/consent/models"
	consentService "naijacare/internal/consent/service"
	"naijacare/internal/consent/store"
)

type brokenReader struct{}

func (brokenReader) Get(context.Context, string) (*models.Record, error) {
	return nil, errors.New("redis: i/o timeout")
}

func TestConsentAdapter_Lookup(t *testing.T) {
	ctx := context.Background()
	svc := consentService.New(store.NewInMemory())
	age := 30
	_, err := svc.Grant(ctx, consentService.GrantRequest{SubjectID: "clinic_001", AgeYears: &age, Scopes: []string{"data_collection"}})
	require.NoError(t, err)

	adapter := NewConsentAdapter(svc)

	record, err := adapter.Lookup(ctx, "clinic_001")
	require.NoError(t, err)
	assert.Equal(t, "clinic_001", record.SubjectID)

	record, err = adapter.Lookup(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, record)

	_, err = NewConsentAdapter(brokenReader{}).Lookup(ctx, "clinic_001")
	assert.Error(t, err)
}
