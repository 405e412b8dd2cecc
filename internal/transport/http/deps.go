package http

import (
	"github.com/mbuddy-api/internal/application/otp"
	"github.com/mbuddy-api/internal/infrastructure/dynamo"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OTPRepo      *dynamo.OTPRepo
	DeliveryRepo *dynamo.DeliveryRepo
	Notifier     otp.Notifier
}
