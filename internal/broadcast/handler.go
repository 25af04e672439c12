package broadcast

import (
	"context"
	"strings"

	"herald/internal/logger"
)

// Enrichment carries the optional best-effort lookups the pipeline may
// consult. All fields are snapshots or callbacks supplied by the caller;
// nil or missing entries degrade gracefully and never fail a line.
type Enrichment struct {
	// ItemIDs maps exact item names to their exchange ids.
	ItemIDs map[string]int64

	// PriceByID resolves an item's current price; ok=false means the
	// lookup was unavailable or had no answer.
	PriceByID func(ctx context.Context, id int64) (int64, bool)

	// QuestDifficulties maps exact quest names to their difficulty.
	QuestDifficulties map[string]QuestDifficulty
}

// JobType identifies an asynchronous side-effect job.
type JobType string

const (
	JobRemoveClanMate           JobType = "remove_clanmate"
	JobUpsertClanMate           JobType = "upsert_clanmate"
	JobRenameClanMate           JobType = "rename_clanmate"
	JobRecordPersonalBest       JobType = "record_personal_best"
	JobUpdateCollectionLogTotal JobType = "update_collection_log_total"
)

// JobRequest is a typed side-effect the caller must enqueue. Jobs maintain
// system-of-record state and are emitted regardless of whether the
// notification itself was suppressed by policy.
type JobRequest struct {
	Type        JobType `json:"type"`
	Player      string  `json:"player"`
	NewName     string  `json:"new_name,omitempty"`
	Rank        string  `json:"rank,omitempty"`
	Activity    string  `json:"activity,omitempty"`
	TimeSeconds float64 `json:"time_seconds,omitempty"`
	Total       int64   `json:"total,omitempty"`
}

// DropLogEntry is a durable audit record request for drop kinds. It is
// produced before suppression is evaluated because the log is an audit
// trail independent of notification policy.
type DropLogEntry struct {
	Kind Kind     `json:"kind"`
	Drop DropItem `json:"drop"`
}

// Suppression gates, reported for observability.
const (
	GateDisallowed = "disallowed"
	GateThreshold  = "threshold"
	GateTier       = "tier"
	GatePercentage = "percentage"
	GateKeyword    = "keyword"
	GateFailClosed = "fail_closed"
)

// Result is everything one line produced: at most one notification, at
// most one drop log request, and any number of side-effect jobs.
type Result struct {
	Kind             Kind
	Notification     *Notification
	DropLog          *DropLogEntry
	Jobs             []JobRequest
	Suppressed       string
	ExtractionFailed bool
}

// Handler runs the classify → extract → enrich → evaluate → render pipeline
// for single lines. It is stateless and safe for concurrent use; its only
// shared resources are the enrichment callbacks handed in per call.
type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Handle processes one clan message under one tenant's policy. Malformed
// input never returns an error: classification misses are a silent no-op
// and extraction mismatches are logged and skipped, so a bad line cannot
// interrupt the stream.
func (h *Handler) Handle(ctx context.Context, msg ClanMessage, policy Policy, enrich Enrichment) Result {
	kind := Classify(msg.Message)
	if kind == KindUnknown {
		return Result{Kind: KindUnknown}
	}

	result := h.dispatch(ctx, kind, msg, policy, enrich)
	result.Kind = kind

	if result.ExtractionFailed {
		// The classifier matched but the extractor did not: the two
		// pattern sets have drifted and need reconciling.
		h.logger.ErrorwCtx(ctx, "Failed to extract broadcast from classified message",
			"kind", kind.String(),
			"message", msg.Message,
		)
	}

	return result
}

func (h *Handler) dispatch(ctx context.Context, kind Kind, msg ClanMessage, policy Policy, enrich Enrichment) Result {
	switch kind {
	case KindItemDrop:
		return h.handleItemDrop(msg, policy)
	case KindRaidDrop:
		return h.handleRaidDrop(ctx, msg, policy, enrich)
	case KindPetDrop:
		return h.handlePetDrop(msg, policy)
	case KindQuest:
		return h.handleQuest(msg, policy, enrich)
	case KindDiary:
		return h.handleDiary(msg, policy)
	case KindPk:
		return h.handlePk(msg, policy)
	case KindInvite:
		return h.handleInvite(msg, policy)
	case KindLeftClan:
		return h.handleDeparture(msg, policy, false)
	case KindExpelledFromClan:
		return h.handleDeparture(msg, policy, true)
	case KindLevelMilestone:
		return h.handleLevelMilestone(msg, policy)
	case KindXPMilestone:
		return h.handleXPMilestone(msg, policy)
	case KindCollectionLog:
		return h.handleCollectionLog(msg, policy)
	case KindCofferDonation, KindCofferWithdrawal:
		return h.handleCoffer(kind, msg, policy)
	case KindPersonalBest:
		return h.handlePersonalBest(msg, policy)
	case KindLootKey:
		return h.handleLootKey(msg, policy)
	default:
		return Result{}
	}
}

func (h *Handler) handleItemDrop(msg ClanMessage, policy Policy) Result {
	drop := ExtractItemDrop(msg.Message)
	if drop == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if !msg.LeaguesWorld {
		result.DropLog = &DropLogEntry{Kind: KindItemDrop, Drop: *drop}
	}

	if gate := h.dropGate(KindItemDrop, drop.Value, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	rendered := formatDropMessage(drop)
	if h.keywordMatch(KindItemDrop, rendered, policy) {
		result.Suppressed = GateKeyword
		return result
	}

	result.Notification = &Notification{
		Kind:     KindItemDrop,
		Player:   drop.Player,
		Title:    titleFor(KindItemDrop, msg.LeaguesWorld),
		Message:  rendered,
		IconURL:  drop.IconURL,
		Quantity: drop.Value,
	}
	return result
}

func (h *Handler) handleRaidDrop(ctx context.Context, msg ClanMessage, policy Policy, enrich Enrichment) Result {
	drop := ExtractRaidDrop(msg.Message)
	if drop == nil {
		return Result{ExtractionFailed: true}
	}

	// Raid lines carry no value token; backfill from the price lookup
	// when it has an answer. A miss leaves the payload untouched.
	if drop.Value == nil && enrich.PriceByID != nil {
		if id, ok := enrich.ItemIDs[drop.ItemName]; ok {
			if price, ok := enrich.PriceByID(ctx, id); ok && price > 0 {
				drop.Value = &price
			}
		}
	}

	result := Result{}
	if !msg.LeaguesWorld {
		result.DropLog = &DropLogEntry{Kind: KindRaidDrop, Drop: *drop}
	}

	if gate := h.dropGate(KindRaidDrop, drop.Value, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	rendered := formatRaidDropMessage(drop)
	if h.keywordMatch(KindRaidDrop, rendered, policy) {
		result.Suppressed = GateKeyword
		return result
	}

	result.Notification = &Notification{
		Kind:     KindRaidDrop,
		Player:   drop.Player,
		Title:    titleFor(KindRaidDrop, msg.LeaguesWorld),
		Message:  rendered,
		IconURL:  drop.IconURL,
		Quantity: drop.Value,
	}
	return result
}

func (h *Handler) handlePetDrop(msg ClanMessage, policy Policy) Result {
	pet := ExtractPetDrop(msg.Message)
	if pet == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if gate := h.plainGates(KindPetDrop, msg.Message, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	result.Notification = &Notification{
		Kind:    KindPetDrop,
		Player:  pet.Player,
		Title:   titleFor(KindPetDrop, msg.LeaguesWorld),
		Message: msg.Message,
		IconURL: pet.IconURL,
	}
	return result
}

func (h *Handler) handleQuest(msg ClanMessage, policy Policy, enrich Enrichment) Result {
	quest := ExtractQuestCompletion(msg.Message)
	if quest == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if policy.IsDisallowed(KindQuest) {
		result.Suppressed = GateDisallowed
		return result
	}

	if policy.MinQuestDifficulty != nil {
		difficulty, ok := enrich.QuestDifficulties[quest.QuestName]
		if !ok {
			// A minimum is configured but the quest cannot be looked
			// up: fail closed rather than notify inconsistently.
			result.Suppressed = GateFailClosed
			return result
		}
		if !difficulty.AtLeast(*policy.MinQuestDifficulty) {
			result.Suppressed = GateTier
			return result
		}
	}

	if h.keywordMatch(KindQuest, msg.Message, policy) {
		result.Suppressed = GateKeyword
		return result
	}

	result.Notification = &Notification{
		Kind:    KindQuest,
		Player:  quest.Player,
		Title:   titleFor(KindQuest, msg.LeaguesWorld),
		Message: msg.Message,
		IconURL: quest.RewardIcon,
	}
	return result
}

func (h *Handler) handleDiary(msg ClanMessage, policy Policy) Result {
	diary := ExtractDiaryCompletion(msg.Message)
	if diary == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if policy.IsDisallowed(KindDiary) {
		result.Suppressed = GateDisallowed
		return result
	}

	if policy.MinDiaryTier != nil && !diary.Tier.AtLeast(*policy.MinDiaryTier) {
		result.Suppressed = GateTier
		return result
	}

	if h.keywordMatch(KindDiary, msg.Message, policy) {
		result.Suppressed = GateKeyword
		return result
	}

	result.Notification = &Notification{
		Kind:    KindDiary,
		Player:  diary.Player,
		Title:   titleFor(KindDiary, msg.LeaguesWorld),
		Message: msg.Message,
		IconURL: ptr(diaryIconURL),
	}
	return result
}

func (h *Handler) handlePk(msg ClanMessage, policy Policy) Result {
	pk := ExtractPkEvent(msg.Message)
	if pk == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if policy.IsDisallowed(KindPk) {
		result.Suppressed = GateDisallowed
		return result
	}

	// Absence of a payload value never suppresses.
	if policy.PkValueThreshold != nil && pk.GpExchanged != nil && *pk.GpExchanged < *policy.PkValueThreshold {
		result.Suppressed = GateThreshold
		return result
	}

	if h.keywordMatch(KindPk, msg.Message, policy) {
		result.Suppressed = GateKeyword
		return result
	}

	result.Notification = &Notification{
		Kind:     KindPk,
		Player:   pk.ClanMate,
		Title:    titleFor(KindPk, msg.LeaguesWorld),
		Message:  msg.Message,
		IconURL:  ptr(pkIconURL),
		Quantity: pk.GpExchanged,
	}
	return result
}

func (h *Handler) handleInvite(msg ClanMessage, policy Policy) Result {
	invite := ExtractInvite(msg.Message)
	if invite == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{
		Jobs: []JobRequest{{
			Type:   JobUpsertClanMate,
			Player: invite.NewMember,
		}},
	}

	if gate := h.plainGates(KindInvite, msg.Message, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	result.Notification = &Notification{
		Kind:    KindInvite,
		Player:  invite.NewMember,
		Title:   titleFor(KindInvite, msg.LeaguesWorld),
		Message: msg.Message,
		IconURL: ptr(clanIconURL),
	}
	return result
}

func (h *Handler) handleDeparture(msg ClanMessage, policy Policy, expelled bool) Result {
	kind := KindLeftClan
	departure := ExtractLeftClan(msg.Message)
	if expelled {
		kind = KindExpelledFromClan
		departure = ExtractExpelled(msg.Message)
	}
	if departure == nil {
		return Result{ExtractionFailed: true}
	}

	// Roster maintenance runs even when the notification is suppressed.
	result := Result{
		Jobs: []JobRequest{{
			Type:   JobRemoveClanMate,
			Player: departure.Player,
		}},
	}

	if gate := h.plainGates(kind, msg.Message, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	result.Notification = &Notification{
		Kind:    kind,
		Player:  departure.Player,
		Title:   titleFor(kind, msg.LeaguesWorld),
		Message: msg.Message,
		IconURL: ptr(clanIconURL),
	}
	return result
}

func (h *Handler) handleLevelMilestone(msg ClanMessage, policy Policy) Result {
	milestone := ExtractLevelMilestone(msg.Message)
	if milestone == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if gate := h.plainGates(KindLevelMilestone, msg.Message, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	result.Notification = &Notification{
		Kind:     KindLevelMilestone,
		Player:   milestone.Player,
		Title:    titleFor(KindLevelMilestone, msg.LeaguesWorld),
		Message:  msg.Message,
		IconURL:  milestone.SkillIcon,
		Quantity: ptr(milestone.Level),
	}
	return result
}

func (h *Handler) handleXPMilestone(msg ClanMessage, policy Policy) Result {
	milestone := ExtractXPMilestone(msg.Message)
	if milestone == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if gate := h.plainGates(KindXPMilestone, msg.Message, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	result.Notification = &Notification{
		Kind:     KindXPMilestone,
		Player:   milestone.Player,
		Title:    titleFor(KindXPMilestone, msg.LeaguesWorld),
		Message:  msg.Message,
		IconURL:  milestone.SkillIcon,
		Quantity: ptr(milestone.XP),
	}
	return result
}

func (h *Handler) handleCollectionLog(msg ClanMessage, policy Policy) Result {
	entry := ExtractCollectionLog(msg.Message)
	if entry == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{
		Jobs: []JobRequest{{
			Type:   JobUpdateCollectionLogTotal,
			Player: entry.Player,
			Total:  entry.Slot,
		}},
	}

	if policy.IsDisallowed(KindCollectionLog) {
		result.Suppressed = GateDisallowed
		return result
	}

	if policy.ClogMaxPercentage != nil && entry.Percentage() > *policy.ClogMaxPercentage {
		result.Suppressed = GatePercentage
		return result
	}

	if h.keywordMatch(KindCollectionLog, msg.Message, policy) {
		result.Suppressed = GateKeyword
		return result
	}

	result.Notification = &Notification{
		Kind:     KindCollectionLog,
		Player:   entry.Player,
		Title:    titleFor(KindCollectionLog, msg.LeaguesWorld),
		Message:  msg.Message,
		IconURL:  entry.IconURL,
		Quantity: ptr(entry.Slot),
	}
	return result
}

func (h *Handler) handleCoffer(kind Kind, msg ClanMessage, policy Policy) Result {
	tx := ExtractCofferTransaction(msg.Message)
	if tx == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if gate := h.plainGates(kind, msg.Message, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	result.Notification = &Notification{
		Kind:     kind,
		Player:   tx.Player,
		Title:    titleFor(kind, msg.LeaguesWorld),
		Message:  msg.Message,
		IconURL:  ptr(cofferIconURL),
		Quantity: ptr(tx.Gp),
	}
	return result
}

func (h *Handler) handlePersonalBest(msg ClanMessage, policy Policy) Result {
	pb := ExtractPersonalBest(msg.Message)
	if pb == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{
		Jobs: []JobRequest{{
			Type:        JobRecordPersonalBest,
			Player:      pb.Player,
			Activity:    pb.Activity,
			TimeSeconds: pb.TimeSeconds,
		}},
	}

	if gate := h.plainGates(KindPersonalBest, msg.Message, policy); gate != "" {
		result.Suppressed = gate
		return result
	}

	result.Notification = &Notification{
		Kind:    KindPersonalBest,
		Player:  pb.Player,
		Title:   titleFor(KindPersonalBest, msg.LeaguesWorld),
		Message: msg.Message,
		IconURL: ptr(speedrunIconURL),
	}
	return result
}

func (h *Handler) handleLootKey(msg ClanMessage, policy Policy) Result {
	key := ExtractLootKey(msg.Message)
	if key == nil {
		return Result{ExtractionFailed: true}
	}

	result := Result{}
	if policy.IsDisallowed(KindLootKey) {
		result.Suppressed = GateDisallowed
		return result
	}

	if policy.DropValueThreshold != nil && key.Value < *policy.DropValueThreshold {
		result.Suppressed = GateThreshold
		return result
	}

	if h.keywordMatch(KindLootKey, msg.Message, policy) {
		result.Suppressed = GateKeyword
		return result
	}

	result.Notification = &Notification{
		Kind:     KindLootKey,
		Player:   key.Player,
		Title:    titleFor(KindLootKey, msg.LeaguesWorld),
		Message:  msg.Message,
		IconURL:  ptr(lootKeyIconURL),
		Quantity: ptr(key.Value),
	}
	return result
}

// dropGate evaluates the shared drop-kind gates: the disallowed set, then
// the value threshold. Values at or above the threshold pass; absence of a
// value never suppresses.
func (h *Handler) dropGate(kind Kind, value *int64, policy Policy) string {
	if policy.IsDisallowed(kind) {
		return GateDisallowed
	}
	if policy.DropValueThreshold != nil && value != nil && *value < *policy.DropValueThreshold {
		return GateThreshold
	}
	return ""
}

// plainGates evaluates the gates every kind shares: the disallowed set and
// the keyword filter over the rendered message.
func (h *Handler) plainGates(kind Kind, rendered string, policy Policy) string {
	if policy.IsDisallowed(kind) {
		return GateDisallowed
	}
	if h.keywordMatch(kind, rendered, policy) {
		return GateKeyword
	}
	return ""
}

// keywordMatch applies the tenant's custom filter for a kind: exact
// case-sensitive substring matching against the rendered message.
func (h *Handler) keywordMatch(kind Kind, rendered string, policy Policy) bool {
	for _, keyword := range policy.KeywordsFor(kind) {
		if keyword != "" && strings.Contains(rendered, keyword) {
			return true
		}
	}
	return false
}
