package bayes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mylittlethingz/backend/internal/domain/shipping"
)

func option(companyID int, name string, rate float64, days int) shipping.CourierOption {
	return shipping.CourierOption{
		CourierCompanyID: companyID,
		CourierName:      name,
		Rate:             decimal.NewFromFloat(rate),
		EstimatedDays:    days,
	}
}

func prepaidOrder() shipping.ShipmentOrder {
	return shipping.ShipmentOrder{
		PaymentMethod: shipping.PaymentPrepaid,
		WeightKg:      0.5,
		Subtotal:      decimal.NewFromInt(1200),
		TotalAmount:   decimal.NewFromInt(1250),
	}
}

func TestCombineIndependent(t *testing.T) {
	// Exact identity for two probabilities
	p1, p2 := 0.3, 0.6
	assert.InDelta(t, 1-(1-p1)*(1-p2), CombineIndependent([]float64{p1, p2}), 1e-12)

	assert.Zero(t, CombineIndependent(nil))
	assert.InDelta(t, 1.0, CombineIndependent([]float64{1.0, 0.2}), 1e-12)
}

func TestCombineIndependent_Monotonic(t *testing.T) {
	base := CombineIndependent([]float64{0.3, 0.4})
	for _, bump := range []float64{0.31, 0.5, 0.9} {
		assert.GreaterOrEqual(t, CombineIndependent([]float64{bump, 0.4}), base)
		assert.GreaterOrEqual(t, CombineIndependent([]float64{0.3, bump}), base)
	}
}

func TestRank_CheaperFasterWinsStrictly(t *testing.T) {
	s := NewScorer(nil, DefaultConfig(), nil)

	options := []shipping.CourierOption{
		option(2, "Slow Freight", 200, 5),
		option(1, "Quick Post", 100, 2),
	}

	ranked := s.Rank(context.Background(), prepaidOrder(), options)
	require.Len(t, ranked, 2)

	assert.Equal(t, 1, ranked[0].CourierCompanyID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_ScoresClampedToUnitInterval(t *testing.T) {
	s := NewScorer(nil, DefaultConfig(), nil)

	options := []shipping.CourierOption{
		option(1, "BlueDart Express", 10, 1),   // below assumed rate floor
		option(2, "Backwater Barge", 900, 12),  // beyond both ceilings
	}

	order := prepaidOrder()
	order.PaymentMethod = shipping.PaymentCashOnDelivery

	for _, res := range s.Rank(context.Background(), order, options) {
		assert.GreaterOrEqual(t, res.Score, 0.0)
		assert.LessOrEqual(t, res.Score, 1.0)
	}
}

func TestRank_ReputationBumpBreaksTie(t *testing.T) {
	s := NewScorer(nil, DefaultConfig(), nil)

	options := []shipping.CourierOption{
		option(1, "No Name Logistics", 120, 3),
		option(2, "BlueDart Surface", 120, 3),
	}

	ranked := s.Rank(context.Background(), prepaidOrder(), options)
	require.Len(t, ranked, 2)
	assert.Equal(t, 2, ranked[0].CourierCompanyID)
}

func TestRank_MultiFragmentNameTakesStrongestBump(t *testing.T) {
	s := NewScorer(nil, DefaultConfig(), nil)

	// A name matching several brand fragments must score exactly like the
	// strongest single match, regardless of fragment order
	options := []shipping.CourierOption{
		option(1, "BlueDart Surface", 120, 3),
		option(2, "BlueDart DTDC Alliance", 120, 3),
	}

	ranked := s.Rank(context.Background(), prepaidOrder(), options)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_EmptyOptions(t *testing.T) {
	s := NewScorer(nil, DefaultConfig(), nil)
	assert.Nil(t, s.Rank(context.Background(), prepaidOrder(), nil))
}

func TestRank_ExternalScoresWin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"options":[
			{"courier_company_id":1,"_bayes_score":0.1},
			{"courier_company_id":2,"_bayes_score":0.9}
		]}`))
	}))
	defer server.Close()

	client, err := NewExternalClient(ExternalConfig{Endpoint: server.URL, TimeoutSeconds: 2})
	require.NoError(t, err)
	s := NewScorer(client, DefaultConfig(), nil)

	// Locally option 1 would win; the delegate says otherwise
	options := []shipping.CourierOption{
		option(1, "Quick Post", 100, 2),
		option(2, "Slow Freight", 200, 5),
	}

	ranked := s.Rank(context.Background(), prepaidOrder(), options)
	require.Len(t, ranked, 2)
	assert.Equal(t, 2, ranked[0].CourierCompanyID)
	assert.Equal(t, 0.9, ranked[0].Score)
}

func TestRank_MalformedExternalResponseFallsBack(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing score field", `{"options":[{"courier_company_id":1},{"courier_company_id":2,"_bayes_score":0.9}]}`, http.StatusOK},
		{"missing option", `{"options":[{"courier_company_id":1,"_bayes_score":0.4}]}`, http.StatusOK},
		{"invalid json", `{"options":`, http.StatusOK},
		{"server error", `boom`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewExternalClient(ExternalConfig{Endpoint: server.URL, TimeoutSeconds: 2})
			require.NoError(t, err)
			s := NewScorer(client, DefaultConfig(), nil)

			options := []shipping.CourierOption{
				option(1, "Quick Post", 100, 2),
				option(2, "Slow Freight", 200, 5),
			}

			// Partial or broken replies are discarded entirely: the
			// local heuristic decides, and no error escapes
			ranked := s.Rank(context.Background(), prepaidOrder(), options)
			require.Len(t, ranked, 2)
			assert.Equal(t, 1, ranked[0].CourierCompanyID)
		})
	}
}

func TestRank_ExternalUnreachableFallsBack(t *testing.T) {
	client, err := NewExternalClient(ExternalConfig{Endpoint: "http://127.0.0.1:1", TimeoutSeconds: 1})
	require.NoError(t, err)
	s := NewScorer(client, DefaultConfig(), nil)

	options := []shipping.CourierOption{
		option(1, "Quick Post", 100, 2),
		option(2, "Slow Freight", 200, 5),
	}

	ranked := s.Rank(context.Background(), prepaidOrder(), options)
	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].CourierCompanyID)
}

func TestExternalConfig_Validate(t *testing.T) {
	assert.Error(t, ExternalConfig{}.Validate())
	assert.Error(t, ExternalConfig{Endpoint: "http://x", TimeoutSeconds: 0}.Validate())
	assert.NoError(t, ExternalConfig{Endpoint: "http://x", TimeoutSeconds: 5}.Validate())
}
