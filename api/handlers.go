package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"casino/economy-bot/domain/entities"

	"github.com/go-chi/chi/v5"
)

type rouletteResultRequest struct {
	Slot *int `json:"slot"`
}

type shopItemRequest struct {
	Type        entities.ItemType `json:"type"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       int64             `json:"price"`
	ExternalID  *string           `json:"external_id"`
}

type crateRewardRequest struct {
	CrateExternalID string `json:"crate_external_id"`
	Type         entities.RewardType `json:"type"`
	Value        string              `json:"value"`
	Chance       int                 `json:"chance"`
	DurationSecs int64               `json:"duration_secs"`
	CompCoins    int64               `json:"comp_coins"`
	HiddenName   bool                `json:"hidden_name"`
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// setRouletteResult presets the slot of the round open in a channel
func (s *Server) setRouletteResult(w http.ResponseWriter, r *http.Request) {
	channelID, ok := idParam(w, r, "channelID")
	if !ok {
		return
	}
	var req rouletteResultRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Slot == nil {
		respondWithError(w, "Missing slot", http.StatusBadRequest)
		return
	}

	// Rounds are keyed by channel, the guild is looked up from the round
	if err := s.roulette.SetResult(r.Context(), 0, channelID, *req.Slot); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithSuccess(w, fmt.Sprintf("Round in channel %d will land on %d", channelID, *req.Slot))
}

func (s *Server) pendingGrants(w http.ResponseWriter, r *http.Request) {
	respondWithData(w, http.StatusOK, s.grants.PendingRevocations())
}

func (s *Server) addShopItem(w http.ResponseWriter, r *http.Request) {
	guildID, ok := idParam(w, r, "guildID")
	if !ok {
		return
	}
	var req shopItemRequest
	if !decode(w, r, &req) {
		return
	}
	if !req.Type.IsValid() || req.Name == "" {
		respondWithError(w, "Item needs a valid type and a name", http.StatusBadRequest)
		return
	}

	item := &entities.ShopItem{
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ExternalID:  req.ExternalID,
	}
	if err := s.shop.AddItem(r.Context(), guildID, item); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, http.StatusCreated, item)
}

func (s *Server) updateShopItem(w http.ResponseWriter, r *http.Request) {
	guildID, ok := idParam(w, r, "guildID")
	if !ok {
		return
	}
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}
	var req shopItemRequest
	if !decode(w, r, &req) {
		return
	}

	item := &entities.ShopItem{
		ID:          itemID,
		Type:        req.Type,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ExternalID:  req.ExternalID,
	}
	if err := s.shop.UpdateItem(r.Context(), guildID, item); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, http.StatusOK, item)
}

// deactivateShopItem hides an item and takes it out of every inventory
func (s *Server) deactivateShopItem(w http.ResponseWriter, r *http.Request) {
	guildID, ok := idParam(w, r, "guildID")
	if !ok {
		return
	}
	itemID, ok := idParam(w, r, "itemID")
	if !ok {
		return
	}

	removed, err := s.shop.DeactivateItem(r.Context(), guildID, itemID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]int64{"inventories_cleared": removed})
}

func (s *Server) listCrateRewards(w http.ResponseWriter, r *http.Request) {
	guildID, ok := idParam(w, r, "guildID")
	if !ok {
		return
	}
	rewards, err := s.crates.ListRewards(r.Context(), guildID, chi.URLParam(r, "externalID"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, http.StatusOK, rewards)
}

func (s *Server) addCrateReward(w http.ResponseWriter, r *http.Request) {
	guildID, ok := idParam(w, r, "guildID")
	if !ok {
		return
	}
	var req crateRewardRequest
	if !decode(w, r, &req) {
		return
	}

	reward := &entities.CrateReward{
		CrateExternalID: chi.URLParam(r, "externalID"),
		Type:            req.Type,
		Value:           req.Value,
		Chance:          req.Chance,
		DurationSecs:    req.DurationSecs,
		CompCoins:       req.CompCoins,
		HiddenName:      req.HiddenName,
	}
	if err := s.crates.AddReward(r.Context(), guildID, reward); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, http.StatusCreated, reward)
}

func (s *Server) updateCrateReward(w http.ResponseWriter, r *http.Request) {
	guildID, ok := idParam(w, r, "guildID")
	if !ok {
		return
	}
	rewardID, ok := idParam(w, r, "rewardID")
	if !ok {
		return
	}
	var req crateRewardRequest
	if !decode(w, r, &req) {
		return
	}
	if req.CrateExternalID == "" {
		respondWithError(w, "Missing crate_external_id", http.StatusBadRequest)
		return
	}

	reward := &entities.CrateReward{
		ID:              rewardID,
		CrateExternalID: req.CrateExternalID,
		Type:            req.Type,
		Value:           req.Value,
		Chance:          req.Chance,
		DurationSecs:    req.DurationSecs,
		CompCoins:       req.CompCoins,
		HiddenName:      req.HiddenName,
	}
	if err := s.crates.UpdateReward(r.Context(), guildID, reward); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithData(w, http.StatusOK, reward)
}

func (s *Server) deleteCrateReward(w http.ResponseWriter, r *http.Request) {
	guildID, ok := idParam(w, r, "guildID")
	if !ok {
		return
	}
	rewardID, ok := idParam(w, r, "rewardID")
	if !ok {
		return
	}
	if err := s.crates.DeleteReward(r.Context(), guildID, rewardID); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithSuccess(w, fmt.Sprintf("Reward %d deleted", rewardID))
}
