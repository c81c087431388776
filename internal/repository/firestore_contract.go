package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"storycare-server/internal/contract"
	"storycare-server/internal/models"
)

// Compile-time check
var _ contract.Store = (*firestoreContractStore)(nil)

// firestoreContractStore хранит контракты в коллекции generation_contracts,
// ID документа = briefID (ровно один контракт на бриф).
type firestoreContractStore struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreContractStore создает contract.Store поверх Firestore.
func NewFirestoreContractStore(client *firestore.Client, logger *zap.Logger) contract.Store {
	return &firestoreContractStore{
		client: client,
		logger: logger.Named("FirestoreContractStore"),
	}
}

func (s *firestoreContractStore) Get(ctx context.Context, briefID string) (*models.GenerationContract, error) {
	snap, err := s.client.Collection(CollectionContracts).Doc(briefID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, models.ErrContractNotFound
		}
		s.logger.Error("Failed to get contract", zap.String("briefID", briefID), zap.Error(err))
		return nil, fmt.Errorf("ошибка чтения контракта %s: %w", briefID, err)
	}
	var c models.GenerationContract
	if err := snap.DataTo(&c); err != nil {
		return nil, fmt.Errorf("ошибка декодирования контракта %s: %w", briefID, err)
	}
	return &c, nil
}

// Save записывает контракт целиком одним Set: либо документ записан весь,
// либо не записан вовсе.
func (s *firestoreContractStore) Save(ctx context.Context, c *models.GenerationContract) error {
	if c.BriefID == "" {
		return fmt.Errorf("%w: contract briefID is empty", models.ErrInvalidInput)
	}
	if _, err := s.client.Collection(CollectionContracts).Doc(c.BriefID).Set(ctx, c); err != nil {
		s.logger.Error("Failed to save contract", zap.String("briefID", c.BriefID), zap.Error(err))
		return fmt.Errorf("ошибка сохранения контракта %s: %w", c.BriefID, err)
	}
	s.logger.Debug("Contract saved",
		zap.String("briefID", c.BriefID), zap.String("status", string(c.Status)))
	return nil
}

func (s *firestoreContractStore) Delete(ctx context.Context, briefID string) error {
	if _, err := s.client.Collection(CollectionContracts).Doc(briefID).Delete(ctx); err != nil {
		s.logger.Error("Failed to delete contract", zap.String("briefID", briefID), zap.Error(err))
		return fmt.Errorf("ошибка удаления контракта %s: %w", briefID, err)
	}
	return nil
}
