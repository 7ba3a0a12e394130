package application

import "context"

// Command changes calendar or order state.
type Command interface {
	CommandName() string
}

// CommandHandler handles a specific command type and returns its result.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Query reads state without changing it.
type Query interface {
	QueryName() string
}

// QueryHandler handles a specific query type.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
