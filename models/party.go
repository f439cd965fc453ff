package models

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
)

// Party is a client or a supplier.
type Party struct {
	ID      string    `json:"id"`
	Kind    PartyKind `json:"kind"`
	Name    string    `json:"name"`
	Phone   string    `json:"phone"`
	Address string    `json:"address"`
}

type NewParty struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Address string `json:"address" validate:"omitempty,max=255"`
}

func (input *NewParty) validate() error {
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)
	if err := validateStruct(input); err != nil {
		return err
	}
	// validate phone
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, config.PhoneRegion()); err != nil {
			return &ValidationError{
				Message: "phone number is not valid",
				Fields:  map[string]string{"phone": "phone"},
				Err:     err,
			}
		}
	}
	return nil
}

func partyScope(kind PartyKind) string {
	return string(kind)
}

func ListParties(ctx context.Context, b Backend, kind PartyKind) ([]Party, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid party kind %q", kind)
	}
	cached, ok, err := utils.RetrieveRedisList[Party](ctx, partyScope(kind))
	if err != nil {
		config.LogError(config.GetLogger(), "party.go", "ListParties", "RetrieveRedisList", kind, err)
	}
	if ok {
		return cached, nil
	}

	parties, err := b.ListParties(ctx, kind)
	if err != nil {
		return nil, err
	}
	for i := range parties {
		parties[i].Kind = kind
	}
	if err := utils.StoreRedisList(ctx, parties, partyScope(kind)); err != nil {
		config.LogError(config.GetLogger(), "party.go", "ListParties", "StoreRedisList", kind, err)
	}
	return parties, nil
}

func GetParty(ctx context.Context, b Backend, kind PartyKind, id string) (*Party, error) {
	parties, err := ListParties(ctx, b, kind)
	if err != nil {
		return nil, err
	}
	for i := range parties {
		if parties[i].ID == id {
			return &parties[i], nil
		}
	}
	return nil, utils.ErrorRecordNotFound
}

func CreateParty(ctx context.Context, b Backend, kind PartyKind, input *NewParty) (*Party, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid party kind %q", kind)
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	party, err := b.CreateParty(ctx, kind, *input)
	if err != nil {
		return nil, err
	}
	if party == nil {
		party = &Party{Name: input.Name, Phone: input.Phone, Address: input.Address}
	}
	party.Kind = kind

	afterMutation(ctx, mutation{
		action:      ActionTypeCreate,
		resource:    string(kind),
		referenceId: party.ID,
		after:       party,
		description: fmt.Sprintf("%s %s created.", kind.Label(), party.Name),
	})
	return party, nil
}

func UpdateParty(ctx context.Context, b Backend, kind PartyKind, id string, input *NewParty) (*Party, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	oldParty, err := GetParty(ctx, b, kind, id)
	if err != nil {
		return nil, err
	}
	party, err := b.UpdateParty(ctx, kind, id, *input)
	if err != nil {
		return nil, err
	}
	if party == nil {
		party = &Party{ID: id, Name: input.Name, Phone: input.Phone, Address: input.Address}
	}
	party.Kind = kind

	afterMutation(ctx, mutation{
		action:      ActionTypeUpdate,
		resource:    string(kind),
		referenceId: id,
		before:      oldParty,
		after:       party,
		description: fmt.Sprintf("%s %s updated.", kind.Label(), party.Name),
	})
	return party, nil
}

func DeleteParty(ctx context.Context, b Backend, kind PartyKind, id string) (*Party, error) {
	result, err := GetParty(ctx, b, kind, id)
	if err != nil {
		return nil, err
	}
	if err := b.DeleteParty(ctx, kind, id); err != nil {
		return nil, err
	}

	afterMutation(ctx, mutation{
		action:      ActionTypeDelete,
		resource:    string(kind),
		referenceId: id,
		before:      result,
		description: fmt.Sprintf("%s %s deleted.", kind.Label(), result.Name),
	})
	return result, nil
}
