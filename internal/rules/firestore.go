package rules

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storycare-server/internal/models"
)

const (
	bundlesCollection = "clinical_rules"
	metaCollection    = "system_config"
	metaDocID         = "clinical_rules"
)

// rulesMetaDoc хранит указатель на версию по умолчанию.
type rulesMetaDoc struct {
	DefaultVersion string `firestore:"defaultVersion"`
}

var _ Store = (*firestoreStore)(nil)

type firestoreStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreStore создает Store поверх Firestore: один документ на версию
// бандла, плюс документ system_config/clinical_rules с версией по умолчанию.
func NewFirestoreStore(client *firestore.Client, logger *zap.Logger) Store {
	return &firestoreStore{
		client: client,
		logger: logger.Named("FirestoreRulesStore"),
	}
}

func (s *firestoreStore) GetBundle(ctx context.Context, version string) (*models.ClinicalRulesBundle, error) {
	snap, err := s.client.Collection(bundlesCollection).Doc(version).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%w: %s", models.ErrRulesVersionNotFound, version)
		}
		s.logger.Error("Failed to get rules bundle", zap.String("version", version), zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения бандла правил %s: %w", version, err)
	}

	var bundle models.ClinicalRulesBundle
	if err := snap.DataTo(&bundle); err != nil {
		s.logger.Error("Failed to decode rules bundle", zap.String("version", version), zap.Error(err))
		return nil, fmt.Errorf("ошибка декодирования бандла правил %s: %w", version, err)
	}
	return &bundle, nil
}

func (s *firestoreStore) DefaultVersion(ctx context.Context) (string, error) {
	snap, err := s.client.Collection(metaCollection).Doc(metaDocID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", fmt.Errorf("%w: default version is not published", models.ErrRulesVersionNotFound)
		}
		return "", fmt.Errorf("ошибка чтения версии правил по умолчанию: %w", err)
	}
	var meta rulesMetaDoc
	if err := snap.DataTo(&meta); err != nil {
		return "", fmt.Errorf("ошибка декодирования версии правил по умолчанию: %w", err)
	}
	if meta.DefaultVersion == "" {
		return "", fmt.Errorf("%w: default version is empty", models.ErrRulesVersionNotFound)
	}
	return meta.DefaultVersion, nil
}

func (s *firestoreStore) SaveBundle(ctx context.Context, bundle *models.ClinicalRulesBundle) error {
	if bundle.Version == "" {
		return fmt.Errorf("%w: bundle version is empty", models.ErrInvalidInput)
	}
	if _, err := s.client.Collection(bundlesCollection).Doc(bundle.Version).Set(ctx, bundle); err != nil {
		s.logger.Error("Failed to save rules bundle", zap.String("version", bundle.Version), zap.Error(err))
		return fmt.Errorf("ошибка сохранения бандла правил %s: %w", bundle.Version, err)
	}
	s.logger.Info("Rules bundle saved", zap.String("version", bundle.Version))
	return nil
}

// SetDefaultVersion публикует версию. Внутри транзакции проверяем, что
// бандл с такой версией действительно существует.
func (s *firestoreStore) SetDefaultVersion(ctx context.Context, version string) error {
	bundleRef := s.client.Collection(bundlesCollection).Doc(version)
	metaRef := s.client.Collection(metaCollection).Doc(metaDocID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(bundleRef); err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("%w: %s", models.ErrRulesVersionNotFound, version)
			}
			return err
		}
		return tx.Set(metaRef, rulesMetaDoc{DefaultVersion: version})
	})
	if err != nil {
		s.logger.Error("Failed to set default rules version", zap.String("version", version), zap.Error(err))
		return err
	}
	s.logger.Info("Default rules version published", zap.String("version", version))
	return nil
}

func (s *firestoreStore) ListVersions(ctx context.Context) ([]string, error) {
	iter := s.client.Collection(bundlesCollection).Documents(ctx)
	defer iter.Stop()

	var versions []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения списка версий правил: %w", err)
		}
		versions = append(versions, snap.Ref.ID)
	}
	return versions, nil
}
