package models

import (
	"context"

	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/utils"
)

type mutation struct {
	action      ActionType
	resource    string
	referenceId string
	before      interface{}
	after       interface{}
	description string
}

// ClearCaches drops every cached collection and report. A mutation on any entity can
// change stock, balances or embedded names elsewhere, so nothing is kept.
func ClearCaches(ctx context.Context) error {
	if err := utils.RemoveRedisType[Party](ctx); err != nil {
		return err
	}
	if err := utils.RemoveRedisType[Product](ctx); err != nil {
		return err
	}
	if err := utils.RemoveRedisType[Document](ctx); err != nil {
		return err
	}
	if err := utils.RemoveRedisType[Summary](ctx); err != nil {
		return err
	}
	return utils.RemoveRedisType[InventoryReport](ctx)
}

// afterMutation runs once the shop API accepted a change. Failures here are logged, never returned:
// the change already happened upstream.
func afterMutation(ctx context.Context, m mutation) {
	logger := config.GetLogger()

	if err := ClearCaches(ctx); err != nil {
		config.LogError(logger, "mutation.go", "afterMutation", "ClearCaches", m.resource, err)
	}

	if err := createHistory(ctx, m.action, m.referenceId, m.resource, m.before, m.after, m.description); err != nil {
		config.LogError(logger, "mutation.go", "afterMutation", "createHistory", m.description, err)
	}

	if !config.EventsEnabled() {
		return
	}
	payload := m.after
	if payload == nil {
		payload = m.before
	}
	raw, err := utils.MarshalToRaw(payload)
	if err != nil {
		config.LogError(logger, "mutation.go", "afterMutation", "MarshalToRaw", m.resource, err)
		return
	}
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	if _, err := config.PublishConsoleEvent(ctx, config.ConsoleEvent{
		Resource:      m.resource,
		Action:        string(m.action),
		ReferenceId:   m.referenceId,
		Payload:       raw,
		CorrelationId: correlationId,
	}); err != nil {
		config.LogError(logger, "mutation.go", "afterMutation", "PublishConsoleEvent", m.referenceId, err)
	}
}
