package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	businessflow "github.com/snipper-app/snipper/business_flow"
	"github.com/snipper-app/snipper/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolverFlow struct {
	outcome *businessflow.ResolveOutcome
}

func (s *stubResolverFlow) Resolve(ctx context.Context, shortCode string, client *businessflow.ClientMetadata) (*businessflow.ResolveOutcome, error) {
	return s.outcome, nil
}

func (s *stubResolverFlow) VerifyPassword(ctx context.Context, shortCode, password string, client *businessflow.ClientMetadata) (*businessflow.VerifyOutcome, error) {
	return &businessflow.VerifyOutcome{Success: false, Message: businessflow.VerifyFailureMessage}, nil
}

func newVisitTestApp(outcome *businessflow.ResolveOutcome) *fiber.App {
	app := fiber.New()
	handler := NewShortLinkHandler(&stubResolverFlow{outcome: outcome}, config.GeoConfig{
		CountryHeader: "CF-IPCountry",
		CityHeader:    "CF-IPCity",
	})
	app.Get("/:code", handler.Visit)
	return app
}

func TestVisit(t *testing.T) {
	t.Run("RedirectSetsLocation", func(t *testing.T) {
		app := newVisitTestApp(&businessflow.ResolveOutcome{
			Decision:       businessflow.DecisionRedirect,
			ShortCode:      "golinks",
			DestinationURL: "https://example.com/dest",
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/golinks", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://example.com/dest", resp.Header.Get("Location"))
	})

	t.Run("NotFoundAndExpiredAreIdentical", func(t *testing.T) {
		var bodies []string
		var statuses []int
		for _, decision := range []businessflow.ResolveDecision{
			businessflow.DecisionNotFound,
			businessflow.DecisionExpired,
		} {
			app := newVisitTestApp(&businessflow.ResolveOutcome{Decision: decision, ShortCode: "golinks"})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/golinks", nil))
			require.NoError(t, err)
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			require.NoError(t, err)
			bodies = append(bodies, string(body))
			statuses = append(statuses, resp.StatusCode)
		}
		assert.Equal(t, fiber.StatusNotFound, statuses[0])
		assert.Equal(t, statuses[0], statuses[1])
		assert.Equal(t, bodies[0], bodies[1], "responses must not reveal whether the code exists")
	})

	t.Run("PasswordRequired", func(t *testing.T) {
		app := newVisitTestApp(&businessflow.ResolveOutcome{
			Decision:  businessflow.DecisionPasswordRequired,
			ShortCode: "golinks",
		})

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/golinks", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
