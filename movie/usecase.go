package movie

import (
	"context"
	"time"
)

type Service interface {
	CreateMovie(ctx context.Context, m Movie) (Movie, error)
	ListMovies(ctx context.Context, f Filter) ([]Movie, error)
	GetMovie(ctx context.Context, id int) (Movie, error)
	UpdateMovie(ctx context.Context, id int, m Movie) (Movie, error)
	DeleteMovie(ctx context.Context, id int) error
}

type Repository interface {
	CreateMovie(ctx context.Context, m Movie) (Movie, error)
	AllMovies(ctx context.Context) ([]Movie, error)
	GetByID(ctx context.Context, id int) (Movie, error)
	ReplaceMovie(ctx context.Context, m Movie) (Movie, error)
	DeleteMovie(ctx context.Context, id int) (Movie, error)
}

type Usecase struct {
	r         Repository
	publisher EventPublisher
	now       func() time.Time
}

// NewUsecase wires the service to its repository. p may be nil, in which
// case no events are emitted.
func NewUsecase(r Repository, p EventPublisher) *Usecase {
	return &Usecase{
		r:         r,
		publisher: p,
		now:       time.Now,
	}
}

func (uc *Usecase) CreateMovie(ctx context.Context, m Movie) (Movie, error) {
	if err := m.Validate(); err != nil {
		return Movie{}, err
	}

	created, err := uc.r.CreateMovie(ctx, m)
	if err != nil {
		return Movie{}, err
	}

	uc.publish(ctx, EventCreated, created)
	return created, nil
}

// ListMovies filters a single snapshot of the collection so the fallback to
// the full list is consistent with the filtered view.
func (uc *Usecase) ListMovies(ctx context.Context, f Filter) ([]Movie, error) {
	movies, err := uc.r.AllMovies(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(movies), nil
}

func (uc *Usecase) GetMovie(ctx context.Context, id int) (Movie, error) {
	return uc.r.GetByID(ctx, id)
}

func (uc *Usecase) UpdateMovie(ctx context.Context, id int, m Movie) (Movie, error) {
	if err := m.Validate(); err != nil {
		return Movie{}, err
	}

	m.ID = id
	updated, err := uc.r.ReplaceMovie(ctx, m)
	if err != nil {
		return Movie{}, err
	}

	uc.publish(ctx, EventUpdated, updated)
	return updated, nil
}

func (uc *Usecase) DeleteMovie(ctx context.Context, id int) error {
	deleted, err := uc.r.DeleteMovie(ctx, id)
	if err != nil {
		return err
	}

	uc.publish(ctx, EventDeleted, deleted)
	return nil
}

func (uc *Usecase) publish(ctx context.Context, t EventType, m Movie) {
	if uc.publisher == nil {
		return
	}
	// publisher adapters log their own failures
	_ = uc.publisher.Publish(ctx, Event{
		Type:       t,
		Movie:      m,
		OccurredAt: uc.now().UTC(),
	})
}
