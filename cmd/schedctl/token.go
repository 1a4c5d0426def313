package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackgods/interview-scheduling/internal/auth"
	"github.com/hackgods/interview-scheduling/internal/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Bearer token helpers",
}

var (
	tokenSubject string
	tokenRole    string
)

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a signed bearer token",
	Long: `Issue a bearer token signed with JWT_SECRET.

Panel tokens must use the interviewer profile id as subject, since
availability and cancellation are limited to the owning interviewer.

Example:
  schedctl token issue --role hr
  schedctl token issue --role panel --subject 6f1c...`,
	RunE: runTokenIssue,
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "", "subject id (random when empty)")
	tokenIssueCmd.Flags().StringVar(&tokenRole, "role", string(auth.RoleHR), "role: admin, hr or panel")

	tokenCmd.AddCommand(tokenIssueCmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	role := auth.Role(tokenRole)
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", tokenRole)
	}

	subject := uuid.New()
	if tokenSubject != "" {
		subject, err = uuid.Parse(tokenSubject)
		if err != nil {
			return fmt.Errorf("invalid --subject: %w", err)
		}
	} else if role == auth.RolePanel {
		return errors.New("panel tokens need --subject")
	}

	token, exp, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL).Issue(subject, role)
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Printf("Subject: %s\nRole: %s\nExpires: %s\n", subject, role, exp.Format(time.RFC3339))
	return nil
}
