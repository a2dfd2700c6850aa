package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/replay"
)

// maxReplayUploadSize limits a replay upload to 8MB, generous for a
// multi-minute 1v1 replay file without leaving the endpoint open to an
// oversized-body DoS.
const maxReplayUploadSize = 8 << 20

// hashBytes sha256-hashes a replay blob for its storage key, the same
// fingerprint-the-payload idiom the teacher uses for its server tokens.
func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// UploadReplay handles POST /replays/upload: a multipart form carrying the
// replay metadata fields alongside the "replay" file part. The blob is
// stored in the object store under its content hash; the parsed metadata
// is verified against the named match and, on success, durably recorded.
func (h *Handler) UploadReplay(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReplayUploadSize)
	if err := r.ParseMultipartForm(maxReplayUploadSize); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "replay upload too large or malformed")
		return
	}

	matchID, err := strconv.ParseInt(r.FormValue("match_id"), 10, 64)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "match_id is required")
		return
	}
	match, err := h.store.GetMatch(matchID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	file, header, err := r.FormFile("replay")
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "replay file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "could not read replay file")
		return
	}

	replayDate, err := time.Parse(time.RFC3339, r.FormValue("replay_date"))
	if err != nil {
		replayDate = time.Now().UTC()
	}

	var observers []string
	if raw := r.FormValue("observers"); raw != "" {
		observers = strings.Split(raw, ",")
	}

	hash := hashBytes(data)
	key := fmt.Sprintf("replays/%d/%s%s", matchID, hash, replayExt(header.Filename))

	rec := models.Replay{
		ReplayPath:          key,
		ReplayHash:          hash,
		ReplayDate:          replayDate,
		Player1Name:         r.FormValue("player1_name"),
		Player2Name:         r.FormValue("player2_name"),
		Player1Race:         models.Race(r.FormValue("player1_race")),
		Player2Race:         models.Race(r.FormValue("player2_race")),
		Result:              r.FormValue("result"),
		Player1Handle:       r.FormValue("player1_handle"),
		Player2Handle:       r.FormValue("player2_handle"),
		Observers:           observers,
		MapName:             r.FormValue("map_name"),
		GamePrivacy:         r.FormValue("game_privacy"),
		GameSpeed:           r.FormValue("game_speed"),
		GameDurationSetting: r.FormValue("game_duration_setting"),
		LockedAlliances:     r.FormValue("locked_alliances"),
		UploadedAt:          time.Now().UTC(),
	}

	report := replay.Verify(rec, match)
	if !report.AllPassed {
		h.jsonResponse(w, http.StatusUnprocessableEntity, report)
		return
	}

	if err := h.blobs.PutBlob(r.Context(), key, data, "application/octet-stream"); err != nil {
		h.errorResponse(w, http.StatusBadGateway, "failed to store replay blob")
		return
	}
	h.store.InsertReplay(rec)

	h.jsonResponse(w, http.StatusOK, report)
}

// replayExt returns filename's extension (including the dot), or "" if it
// has none, so the storage key keeps the ".rep"/"SC2Replay"-style suffix
// without trusting the raw filename as the key itself.
func replayExt(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return filename[i:]
}
