package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authUseCase "github.com/allisson/screening/internal/auth/usecase"
)

type createAPIKeyOutput struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	MaskedKey string `json:"masked_key"`
}

// RunCreateAPIKey issues an API key for an existing user, e.g. for a service integration.
// The plaintext key is printed once and cannot be recovered afterwards.
func RunCreateAPIKey(
	ctx context.Context,
	apiKeyUseCase authUseCase.APIKeyUseCase,
	logger *slog.Logger,
	userID, name string,
	format string,
	tuple IOTuple,
) error {
	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}

	output, err := apiKeyUseCase.Create(ctx, parsedUserID, name)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	out := createAPIKeyOutput{
		ID:        output.APIKey.ID.String(),
		UserID:    parsedUserID.String(),
		Name:      output.APIKey.Name,
		Key:       output.PlainKey,
		MaskedKey: output.APIKey.MaskedKey,
	}

	if err := writeOutput(tuple.Writer, format, out, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, "API key created successfully!")
		_, _ = fmt.Fprintf(w, "ID:   %s\n", out.ID)
		_, _ = fmt.Fprintf(w, "Name: %s\n", out.Name)
		_, _ = fmt.Fprintf(w, "Key:  %s\n", out.Key)
		_, _ = fmt.Fprintln(w, "\nWARNING: Save this key securely. It will not be shown again.")
	}); err != nil {
		return err
	}

	logger.Info("api key created successfully",
		slog.String("api_key_id", out.ID),
		slog.String("user_id", out.UserID),
		slog.String("masked_key", out.MaskedKey),
	)
	return nil
}
