package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oclservices/ocl-backend/pkg/auth"
	"github.com/oclservices/ocl-backend/pkg/auth/session"
	"github.com/oclservices/ocl-backend/pkg/config"
	"github.com/oclservices/ocl-backend/pkg/enums"
	"github.com/oclservices/ocl-backend/pkg/logger"
	"github.com/oclservices/ocl-backend/pkg/redis"
)

// issue-token mints an access token and opens its Redis session. Operators use
// it to hand out portal and courier credentials.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "issue-token"})

	_ = godotenv.Load()

	role := flag.String("role", string(enums.ActorRoleAdmin), "actor role: admin|corporate|medicine|courier")
	subject := flag.String("subject", "", "subject recorded on the token (email or name)")
	entity := flag.String("entity", "", "entity id the token is scoped to (required for non-admin roles)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "issue-token",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	payload, err := buildPayload(*role, *subject, *entity)
	if err != nil {
		logg.Error(ctx, "invalid flags", err)
		os.Exit(2)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	manager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		logg.Error(ctx, "failed to mint token", err)
		os.Exit(1)
	}
	if err := manager.Open(ctx, payload.JTI, payload.Subject); err != nil {
		logg.Error(ctx, "failed to open session", err)
		os.Exit(1)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"role":       string(payload.Role),
		"subject":    payload.Subject,
		"expires_in": cfg.JWT.SessionTTL().String(),
	})
	logg.Info(ctx, "access token issued")
	fmt.Println(token)
}

func buildPayload(role, subject, entity string) (auth.AccessTokenPayload, error) {
	actorRole, err := enums.ParseActorRole(role)
	if err != nil {
		return auth.AccessTokenPayload{}, err
	}
	if subject == "" {
		return auth.AccessTokenPayload{}, fmt.Errorf("subject is required")
	}

	payload := auth.AccessTokenPayload{
		Subject: subject,
		Role:    actorRole,
		JTI:     session.NewAccessID(),
	}
	if entity != "" {
		id, err := uuid.Parse(entity)
		if err != nil {
			return auth.AccessTokenPayload{}, fmt.Errorf("entity must be a uuid: %w", err)
		}
		payload.EntityID = &id
	}
	if actorRole.RequiresEntity() && payload.EntityID == nil {
		return auth.AccessTokenPayload{}, fmt.Errorf("role %s requires -entity", actorRole)
	}
	return payload, nil
}
