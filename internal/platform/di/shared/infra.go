// internal/platform/di/shared/infra.go
package shared

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	dbcommon "modaorganica/internal/adapters/out/db/common"
	appcfg "modaorganica/internal/infra/config"
	"modaorganica/internal/infra/database"
	firestoreinfra "modaorganica/internal/infra/firestore"
	"modaorganica/internal/infra/secrets"
)

// Infra is shared runtime infrastructure for DI.
// - owns external clients (SQL/Firestore/GCS/FirebaseAuth/SecretManager)
// - owns resolved settings (secrets filled in, warnings logged once)
//
// IMPORTANT:
// Infra must NOT depend on routers, handlers or usecases.
type Infra struct {
	Config   *appcfg.Config
	Settings RuntimeSettings
	Log      *zap.Logger

	// Clients (owned; Close-managed). Only the ones the config needs are set.
	DB            *database.DB
	Firestore     *firestoreinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
}

// NewInfra initializes shared infra.
// The storage backend is strict (return error).
// SecretManager, GCS and Firebase Auth are best-effort (warn + continue).
func NewInfra(ctx context.Context, cfg *appcfg.Config, logger *zap.Logger) (*Infra, error) {
	if cfg == nil {
		return nil, errors.New("shared.infra: config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("shared.infra")

	inf := &Infra{Config: cfg, Log: logger}

	// Credentials file (optional; mainly for local dev)
	var clientOpts []option.ClientOption
	if credFile := strings.TrimSpace(cfg.GCP.CredentialsFile); credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Info("using credentials file for GCP clients", zap.String("file", redactPath(credFile)))
	}

	// 1) Secret Manager (best-effort; only when a secret name is configured)
	if wantsSecrets(cfg) {
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Warn("secretmanager.NewClient failed; secrets stay unresolved", zap.Error(err))
		} else {
			inf.SecretManager = sm
			p := secrets.NewProviderSM(sm, cfg.GCP.ProjectID)
			for _, s := range []struct {
				dst  *string
				name string
			}{
				{&cfg.Payment.StripeSecretKey, cfg.Payment.StripeSecretName},
				{&cfg.Mail.SendGridAPIKey, cfg.Mail.SendGridSecretName},
			} {
				if err := p.Fill(ctx, s.dst, s.name); err != nil {
					log.Warn("secret not resolved", zap.String("secret", s.name), zap.Error(err))
				}
			}
		}
	}

	settings, warns, err := ResolveRuntimeSettings(cfg)
	if err != nil {
		_ = inf.Close()
		return nil, err
	}
	for _, w := range warns {
		log.Warn(w)
	}
	inf.Settings = settings

	// 2) Storage backend (strict)
	switch cfg.Storage.Backend {
	case "firestore":
		fsw, err := firestoreinfra.NewClient(ctx, settings.FirestoreProjectID, clientOpts, logger)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.Firestore = fsw
	case "postgres":
		db, err := database.Open(ctx, dbcommon.DialectPostgres, cfg.Storage.DatabaseURL, logger)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.DB = db
	default:
		db, err := database.Open(ctx, dbcommon.DialectSQLite, cfg.Storage.SQLitePath, logger)
		if err != nil {
			_ = inf.Close()
			return nil, fmt.Errorf("shared.infra: %w", err)
		}
		inf.DB = db
	}

	// 3) GCS (best-effort; product images fall back to public URLs)
	if settings.ImageBucket != "" && settings.SignedURLTTL > 0 {
		gcs, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Warn("storage.NewClient failed; using public image URLs", zap.Error(err))
		} else {
			inf.GCS = gcs
			log.Info("GCS storage client initialized", zap.String("bucket", settings.ImageBucket))
		}
	}

	// 4) Firebase Auth (best-effort)
	if cfg.GCP.EnableFirebaseAuth {
		fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: settings.FirebaseProjectID}, clientOpts...)
		if err != nil {
			log.Warn("firebase app init failed; buyers stay anonymous", zap.Error(err))
		} else if authClient, err := fbApp.Auth(ctx); err != nil {
			log.Warn("firebase auth init failed; buyers stay anonymous", zap.Error(err))
		} else {
			inf.FirebaseAuth = authClient
			log.Info("Firebase Auth initialized")
		}
	}

	return inf, nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.DB != nil {
		errs = append(errs, i.DB.Close())
	}
	if i.Firestore != nil {
		errs = append(errs, i.Firestore.Close())
	}
	if i.GCS != nil {
		errs = append(errs, i.GCS.Close())
	}
	if i.SecretManager != nil {
		errs = append(errs, i.SecretManager.Close())
	}
	return errors.Join(errs...)
}

func wantsSecrets(cfg *appcfg.Config) bool {
	if strings.TrimSpace(cfg.GCP.ProjectID) == "" {
		return false
	}
	return (cfg.Payment.StripeSecretKey == "" && cfg.Payment.StripeSecretName != "") ||
		(cfg.Mail.SendGridAPIKey == "" && cfg.Mail.SendGridSecretName != "")
}

func redactPath(p string) string {
	// Do not log full path; keep only the last segment
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "***"
	}
	return "***/" + last
}
