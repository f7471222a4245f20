package translator

import (
	"errors"
	"fmt"

	"github.com/gyaneshwarpardhi/capibridge/internal/capi"
	"github.com/gyaneshwarpardhi/capibridge/internal/webhook"
)

// Outbound event names.
const (
	EventCompleteRegistration = "CompleteRegistration"
	EventLead                 = "Lead"
	EventViewContent          = "ViewContent"
	EventAddToCart            = "AddToCart"
	EventInitiateCheckout     = "InitiateCheckout"
	EventPurchase             = "Purchase"
)

const (
	typeRegister       = webhook.TypeRegister
	typeLogin          = webhook.TypeLogin
	typeDepositCreated = webhook.TypeDepositCreated
	typeDepositPaid    = webhook.TypeDepositPaid

	contentTypeProduct = "product"
)

// ErrMissingDeposit is returned when a deposit mapper gets an event without
// the deposit variant.
var ErrMissingDeposit = errors.New("deposit fields not parsed")

// Draft is one outbound event before the shared envelope fields are filled.
type Draft struct {
	Name   string
	ID     string
	Custom *capi.CustomData
}

// Input is what a Mapper sees for one inbound event.
type Input struct {
	Event *webhook.Event
	// SharedID is the request's primary event id.
	SharedID string
	// NewID returns a fresh id for secondary events.
	NewID    func() string
	Currency string
}

// Mapper turns one inbound event type into its ordered fan-out.
type Mapper interface {
	// EventType returns the inbound type this mapper is registered under.
	EventType() string
	Map(in *Input) ([]Draft, error)
}

// signalMapper emits a primary conversion plus a ViewContent quality signal,
// both with zero value.
type signalMapper struct {
	eventType        string
	primary          string
	primaryContent   string
	secondaryContent string
}

func newSignalMapper(eventType, primary, primaryContent, secondaryContent string) signalMapper {
	return signalMapper{
		eventType:        eventType,
		primary:          primary,
		primaryContent:   primaryContent,
		secondaryContent: secondaryContent,
	}
}

func (m signalMapper) EventType() string { return m.eventType }

func (m signalMapper) Map(in *Input) ([]Draft, error) {
	return []Draft{
		{
			Name:   m.primary,
			ID:     in.SharedID,
			Custom: &capi.CustomData{Currency: in.Currency, Value: 0, ContentName: m.primaryContent},
		},
		{
			Name:   EventViewContent,
			ID:     in.NewID(),
			Custom: &capi.CustomData{Currency: in.Currency, Value: 0, ContentName: m.secondaryContent},
		},
	}, nil
}

type depositCreatedMapper struct{}

func (depositCreatedMapper) EventType() string { return typeDepositCreated }

func (depositCreatedMapper) Map(in *Input) ([]Draft, error) {
	atc, err := productData(in)
	if err != nil {
		return nil, err
	}
	atc.ContentName = "Deposit Created"

	ic, _ := productData(in)
	ic.NumItems = 1

	return []Draft{
		{Name: EventAddToCart, ID: in.NewID(), Custom: atc},
		{Name: EventInitiateCheckout, ID: in.SharedID, Custom: ic},
	}, nil
}

type depositPaidMapper struct{}

func (depositPaidMapper) EventType() string { return typeDepositPaid }

func (depositPaidMapper) Map(in *Input) ([]Draft, error) {
	cd, err := productData(in)
	if err != nil {
		return nil, err
	}
	cd.ContentName = "Deposit Paid"
	return []Draft{{Name: EventPurchase, ID: in.SharedID, Custom: cd}}, nil
}

// productData builds the commerce block shared by deposit events.
// A missing internal_id leaves content_ids out instead of sending a
// placeholder.
func productData(in *Input) (*capi.CustomData, error) {
	d := in.Event.Deposit
	if d == nil {
		return nil, fmt.Errorf("%s: %w", in.Event.Type, ErrMissingDeposit)
	}
	cd := &capi.CustomData{
		Currency:    in.Currency,
		ContentType: contentTypeProduct,
	}
	if d.Currency != "" {
		cd.Currency = d.Currency
	}
	if d.Amount != nil {
		cd.Value = *d.Amount
	}
	if d.InternalID != "" {
		cd.ContentIDs = []string{d.InternalID}
	}
	return cd, nil
}
