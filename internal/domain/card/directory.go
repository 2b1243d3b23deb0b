package card

import (
	"context"
	"time"

	"Fluxo/internal/domain/shared"
	appErrors "Fluxo/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/patrickmn/go-cache"
)

// CardLister carrega todos os cartoes de um usuario.
type CardLister interface {
	ListAllCards(ctx context.Context, userID ulid.ULID) ([]*Card, error)
}

// LabelDirectory resolve apelidos de cartao para cartoes do usuario,
// guardando o mapa completo por usuario em cache.
type LabelDirectory struct {
	cards CardLister
	cache *cache.Cache
}

func NewLabelDirectory(cards CardLister, ttl time.Duration) *LabelDirectory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LabelDirectory{
		cards: cards,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (d *LabelDirectory) Lookup(ctx context.Context, userID ulid.ULID, label string) (*Card, error) {
	key := shared.NormalizeLabel(label)
	if key == "" {
		return nil, appErrors.ErrCardNotFound
	}

	byLabel, err := d.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	card, ok := byLabel[key]
	if !ok {
		return nil, appErrors.ErrCardNotFound.WithDetails(map[string]interface{}{"label": label})
	}
	copied := *card
	return &copied, nil
}

// Invalidate descarta o cache do usuario apos alteracoes nos cartoes.
func (d *LabelDirectory) Invalidate(userID ulid.ULID) {
	d.cache.Delete(userID.String())
}

func (d *LabelDirectory) load(ctx context.Context, userID ulid.ULID) (map[string]*Card, error) {
	if cached, ok := d.cache.Get(userID.String()); ok {
		return cached.(map[string]*Card), nil
	}

	cards, err := d.cards.ListAllCards(ctx, userID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	byLabel := make(map[string]*Card, len(cards))
	for _, c := range cards {
		byLabel[shared.NormalizeLabel(c.Label)] = c
	}
	d.cache.SetDefault(userID.String(), byLabel)
	return byLabel, nil
}
