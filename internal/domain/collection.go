package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Collection groups the items a user curates within one media domain.
// DomainHint steers discovery searches (e.g. "movies", "games", "books").
type Collection struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string    `gorm:"column:name;not null" json:"name"`
	DomainHint string    `gorm:"column:domain_hint" json:"domain_hint,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Collection) TableName() string { return "collection" }

type ItemStatus string

const (
	ItemStatusActive  ItemStatus = "ACTIVE"
	ItemStatusIgnored ItemStatus = "IGNORED"
)

// InitialEloScore is the rating every item and candidate starts from.
const InitialEloScore = 1200

// Item is one piece of media inside one collection. Tier and EloScore are the
// two mutable axes the ranking core manages: Tier only through the tier
// engine, EloScore only through the match engine's batch update path.
type Item struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CollectionID uuid.UUID   `gorm:"type:uuid;not null;index" json:"collection_id"`
	Collection   *Collection `gorm:"constraint:OnDelete:CASCADE;foreignKey:CollectionID;references:ID" json:"collection,omitempty"`

	Title       string  `gorm:"column:title;not null" json:"title"`
	Description string  `gorm:"column:description;type:text" json:"description,omitempty"`
	ImageURL    string  `gorm:"column:image_url" json:"image_url,omitempty"`
	Origin      string  `gorm:"column:origin" json:"origin,omitempty"`
	Tier        *string `gorm:"column:tier;index" json:"tier,omitempty"`

	EloScore int        `gorm:"column:elo_score;not null;default:1200" json:"elo_score"`
	Status   ItemStatus `gorm:"column:status;not null;default:'ACTIVE';index" json:"status"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Item) TableName() string { return "item" }

type RankSentiment string

const (
	SentimentPositive RankSentiment = "positive"
	SentimentNeutral  RankSentiment = "neutral"
	SentimentNegative RankSentiment = "negative"
)

// CustomRank is a user-defined tier scoped to one collection. SortOrder is
// dense and unique within the collection (0..N-1).
type CustomRank struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CollectionID uuid.UUID   `gorm:"type:uuid;not null;index:idx_rank_collection_order" json:"collection_id"`
	Collection   *Collection `gorm:"constraint:OnDelete:CASCADE;foreignKey:CollectionID;references:ID" json:"collection,omitempty"`

	Name      string        `gorm:"column:name;not null" json:"name"`
	Color     string        `gorm:"column:color;not null" json:"color"`
	Sentiment RankSentiment `gorm:"column:sentiment;not null;default:'neutral'" json:"sentiment"`
	SortOrder int           `gorm:"column:sort_order;not null;index:idx_rank_collection_order" json:"sort_order"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CustomRank) TableName() string { return "custom_rank" }

// ActivityEvent is an append-only audit row. Match outcomes are written with
// the winner/loser names the caller supplied at call time; candidate ids may
// never be persisted, so names are never re-resolved from storage.
type ActivityEvent struct {
	ID      uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    string         `gorm:"column:type;not null;index" json:"type"`
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ActivityEvent) TableName() string { return "activity_event" }

const (
	EventItemCreated         = "ranking.item_created"
	EventMatchRecorded       = "ranking.match_recorded"
	EventTierAssigned        = "ranking.tier_assigned"
	EventTierRemoved         = "ranking.tier_removed"
	EventChallengerPromoted  = "ranking.challenger_promoted"
	EventTiersReordered      = "ranking.tiers_reordered"
	EventCustomRankCreated   = "ranking.custom_rank_created"
	EventCustomRankDeleted   = "ranking.custom_rank_deleted"
	EventTournamentGenerated = "ranking.tournament_generated"
)
