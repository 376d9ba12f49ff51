package search

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy/internal/models"
)

func TestQueryBody(t *testing.T) {
	raw, err := json.Marshal(QueryBody("parcetamol", 20, 10))
	require.NoError(t, err)

	s := string(raw)
	assert.Contains(t, s, `"fuzziness":"AUTO"`)
	assert.Contains(t, s, `"name^2"`)
	assert.Contains(t, s, `"is_active":true`)
	assert.Contains(t, s, `"from":20`)
	assert.Contains(t, s, `"size":10`)
}

func TestDecodeHits(t *testing.T) {
	id := uuid.New()
	body := `{"hits":{"total":{"value":2},"hits":[{"_id":"` + id.String() + `"},{"_id":"bogus"}]}}`

	total, ids, err := decodeHits(strings.NewReader(body))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uuid.UUID{id}, ids)
}

func TestDocumentFrom(t *testing.T) {
	brand := uuid.New()
	d := DocumentFrom(&models.Product{Name: "Dolo", BrandID: &brand, IsActive: true, Tags: []string{"fever"}})
	assert.Equal(t, brand.String(), d.BrandID)
	assert.Empty(t, d.CategoryID)
	assert.True(t, d.IsActive)
}
