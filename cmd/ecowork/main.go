package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/fastygo/ecowork/domain"
	"github.com/fastygo/ecowork/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates user mistakes from failures of the client itself.
func exitCode(err error) int {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeInvalid),
		domain.IsDomainError(err, domain.ErrCodeInvalidCredentials),
		domain.IsDomainError(err, domain.ErrCodeInvalidInviteCode),
		domain.IsDomainError(err, domain.ErrCodeUnauthorized),
		domain.IsDomainError(err, domain.ErrCodeForbidden),
		domain.IsDomainError(err, domain.ErrCodeInsufficientCredits):
		return 2
	default:
		return 1
	}
}
