package contracts

import (
	"Fluxo/internal/domain/staging"

	"github.com/shopspring/decimal"
)

type StagingItemInput struct {
	RawPayload          string          `json:"raw_payload" binding:"omitempty"`
	Date                string          `json:"date" binding:"required,datetime=2006-01-02"`
	Description         string          `json:"description" binding:"required,max=255"`
	Value               decimal.Decimal `json:"value"`
	CardLabel           *string         `json:"card_label" binding:"omitempty,max=100"`
	SuggestedContext    *string         `json:"suggested_context" binding:"omitempty,oneof=PERSONAL BUSINESS"`
	SuggestedCategoryId *string         `json:"suggested_category_id" binding:"omitempty"`
}

type StagingImportRequest struct {
	Items []StagingItemInput `json:"items" binding:"required,min=1,max=500,dive"`
}

type StagingDecisionInput struct {
	StagingItemId     string `json:"staging_item_id" binding:"required"`
	DecidedContext    string `json:"decided_context" binding:"required,oneof=PERSONAL BUSINESS"`
	DecidedCategoryId string `json:"decided_category_id" binding:"required"`
}

type StagingApproveRequest struct {
	Decisions []StagingDecisionInput `json:"decisions" binding:"required,min=1,dive"`
}

type StagingIgnoreRequest struct {
	Ids []string `json:"ids" binding:"required,min=1"`
}

type StagingIgnoreResponse struct {
	Ignored int64 `json:"ignored"`
}

type StagingImportResponse struct {
	Items []*staging.Item `json:"items"`
	Total int             `json:"total"`
}
