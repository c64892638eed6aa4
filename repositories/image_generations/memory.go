package image_generations

import (
	"context"
	"errors"
	"sync"

	"image_generation_server/clock"
	"image_generation_server/entities"
	"image_generation_server/repositories"
)

type memoryRepo struct {
	mu          sync.RWMutex
	clock       clock.Clock
	nextID      int64
	generations []entities.ImageGeneration
}

// NewMemoryRepository keeps generations in process memory. Nothing survives a restart.
func NewMemoryRepository(generationClock clock.Clock) Repository {
	if generationClock == nil {
		generationClock = clock.NewClock()
	}

	return &memoryRepo{
		clock:  generationClock,
		nextID: 1,
	}
}

func (repo *memoryRepo) Create(ctx context.Context, generation *entities.ImageGeneration) (*entities.ImageGeneration, error) {
	if generation == nil {
		return nil, errors.New("missing generation")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	created := *generation
	created.ID = repo.nextID
	created.CreatedAt = repo.clock.Now()

	repo.nextID++
	repo.generations = append(repo.generations, created)

	return &created, nil
}

func (repo *memoryRepo) GetByID(ctx context.Context, id int64) (*entities.ImageGeneration, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for i := range repo.generations {
		if repo.generations[i].ID == id {
			found := repo.generations[i]
			return &found, nil
		}
	}

	return nil, repositories.NewNotFoundError(entityName, id)
}

func (repo *memoryRepo) GetAll(ctx context.Context) ([]*entities.ImageGeneration, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	generations := make([]*entities.ImageGeneration, 0, len(repo.generations))
	for i := range repo.generations {
		generation := repo.generations[i]
		generations = append(generations, &generation)
	}

	return generations, nil
}

func (repo *memoryRepo) GetRecent(ctx context.Context, limit int) ([]*entities.ImageGeneration, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if limit <= 0 {
		return []*entities.ImageGeneration{}, nil
	}

	if limit > len(repo.generations) {
		limit = len(repo.generations)
	}

	generations := make([]*entities.ImageGeneration, 0, limit)
	for i := len(repo.generations) - 1; i >= len(repo.generations)-limit; i-- {
		generation := repo.generations[i]
		generations = append(generations, &generation)
	}

	return generations, nil
}
