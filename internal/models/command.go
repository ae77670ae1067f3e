package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type CommandKind string

const (
	CommandKindWithdraw CommandKind = "withdraw"
	CommandKindTransfer CommandKind = "transfer"
)

var ErrUnknownCommand = errors.New("unknown command kind")

// Command is a balance mutation admitted by the API and executed later by a
// worker. The set of implementations is closed: WithdrawCommand and
// TransferCommand.
type Command interface {
	Kind() CommandKind
	// IdempotencyKey is the ledger reference that marks the command as
	// applied.
	IdempotencyKey() string
}

type WithdrawCommand struct {
	WalletID    string          `json:"wallet_id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Description string          `json:"description,omitempty"`
}

func (WithdrawCommand) Kind() CommandKind        { return CommandKindWithdraw }
func (c WithdrawCommand) IdempotencyKey() string { return c.Reference }

type TransferCommand struct {
	SourceWalletID      string          `json:"source_wallet_id"`
	DestinationWalletID string          `json:"destination_wallet_id"`
	UserID              string          `json:"user_id"`
	Amount              decimal.Decimal `json:"amount"`
	Reference           string          `json:"reference"`
	Description         string          `json:"description,omitempty"`
}

func (TransferCommand) Kind() CommandKind        { return CommandKindTransfer }
func (c TransferCommand) IdempotencyKey() string { return c.Reference }

type commandEnvelope struct {
	Kind    CommandKind     `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeCommand serializes cmd with its kind tag.
func EncodeCommand(cmd Command) ([]byte, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s command: %w", cmd.Kind(), err)
	}
	return json.Marshal(commandEnvelope{Kind: cmd.Kind(), Payload: payload})
}

// DecodeCommand reverses EncodeCommand.
func DecodeCommand(data []byte) (Command, error) {
	var env commandEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command envelope: %w", err)
	}

	switch env.Kind {
	case CommandKindWithdraw:
		var cmd WithdrawCommand
		if err := json.Unmarshal(env.Payload, &cmd); err != nil {
			return nil, fmt.Errorf("failed to unmarshal withdraw command: %w", err)
		}
		return cmd, nil
	case CommandKindTransfer:
		var cmd TransferCommand
		if err := json.Unmarshal(env.Payload, &cmd); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transfer command: %w", err)
		}
		return cmd, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Kind)
	}
}

// JobHandle is returned by admission once a command is durably queued.
type JobHandle struct {
	ID        string      `json:"job_id"`
	Kind      CommandKind `json:"kind"`
	Status    string      `json:"status"`
	Reference string      `json:"reference"`
}
