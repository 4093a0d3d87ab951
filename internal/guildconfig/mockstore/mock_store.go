package mockstore

import (
	"context"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"

	"github.com/stretchr/testify/mock"
)

type Store struct {
	mock.Mock
}

func (s *Store) GetConfig(ctx context.Context, guildID string) (*db.GuildConfig, error) {
	args := s.Called(ctx, guildID)

	var row *db.GuildConfig
	if args.Get(0) != nil {
		row = args.Get(0).(*db.GuildConfig)
	}

	return row, args.Error(1)
}

func (s *Store) UpsertConfig(ctx context.Context, guildID string, update domain.ConfigUpdate) error {
	args := s.Called(ctx, guildID, update)
	return args.Error(0)
}
