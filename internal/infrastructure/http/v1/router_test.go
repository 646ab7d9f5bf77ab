package v1

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"planora/internal/domain/accounting"
	"planora/internal/domain/auth"
	"planora/internal/domain/collaborator"
	"planora/internal/domain/gateway"
	"planora/internal/domain/instance"
	"planora/internal/domain/plan"
	"planora/internal/domain/pricetable"
	"planora/internal/domain/ticket"
	"planora/internal/domain/user"
)

// newTestRouter builds the full route table with inert services. Routes
// are never invoked; the test only inspects registration.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterConfig{
		AuthService:         auth.NewService(nil, nil, nil, nil, auth.DefaultServiceConfig()),
		UserService:         user.NewService(nil, nil, nil),
		GatewayService:      gateway.NewService(nil, nil),
		CollaboratorService: collaborator.NewService(nil, nil, nil),
		InstanceService:     instance.NewService(nil, nil),
		TicketService:       ticket.NewService(nil, nil, nil),
		AccountingService:   accounting.NewService(nil, nil),
		PriceTableService:   pricetable.NewService(nil, nil, nil),
		PlanService:         plan.NewService(nil, nil, nil, nil, nil, nil),
	})
}

func TestRouterExposesResourcePaths(t *testing.T) {
	r := newTestRouter()

	registered := make(map[string]bool)
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/auth/signup",
		"POST /api/v1/auth/login",
		"GET /api/v1/auth/verify",

		"GET /api/v1/users",
		"GET /api/v1/payment-gateways",
		"POST /api/v1/payment-gateways",
		"PUT /api/v1/payment-gateways/:id",
		"DELETE /api/v1/payment-gateways/:id",
		"GET /api/v1/collaborators",
		"GET /api/v1/whatsapp-instances",
		"POST /api/v1/whatsapp-instances/:id/status",
		"GET /api/v1/tickets",
		"GET /api/v1/accounting/summary",

		"GET /api/v1/customer-plans",
		"POST /api/v1/customer-plans",
		"PUT /api/v1/customer-plans/:id",
		"DELETE /api/v1/customer-plans/:id",
		"POST /api/v1/customer-plans/:id/pay",
		"POST /api/v1/customer-plans/gateway-callback",

		"GET /api/v1/price-tables",
		"GET /api/v1/price-tables/:id",
		"POST /api/v1/price-tables",
		"PUT /api/v1/price-tables/:id",
		"DELETE /api/v1/price-tables/:id",
		"GET /api/v1/admin/price-tables",
	}
	for _, want := range expected {
		assert.True(t, registered[want], "missing route %s", want)
	}

	stale := []string{
		"GET /api/v1/gateways",
		"GET /api/v1/instances",
		"GET /api/v1/plans",
		"POST /api/v1/admin/price-tables",
	}
	for _, gone := range stale {
		assert.False(t, registered[gone], "stale route %s", gone)
	}
}
