// Command seeder pushes a handful of fake players into a running
// ladder-core server's queue, the same smoke-test role the teacher's
// cmd/seeder plays for its event-ingest endpoint, retargeted at
// /queue/enter so a local wave can be observed end to end.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const apiURL = "http://localhost:8080/queue/enter"

type enterQueueRequest struct {
	DiscordUID      int64    `json:"discord_uid"`
	SelectedRaces   []string `json:"selected_races"`
	VetoedMaps      []string `json:"vetoed_maps,omitempty"`
	PresenterHandle string   `json:"presenter_handle"`
}

// seedPlayers alternates a BW race and an SC2 race so every wave has at
// least one valid cross-title pairing to make.
var seedPlayers = []enterQueueRequest{
	{DiscordUID: 100001, SelectedRaces: []string{"bw_terran"}, PresenterHandle: "seed-bw-1"},
	{DiscordUID: 100002, SelectedRaces: []string{"sc2_zerg"}, PresenterHandle: "seed-sc2-1"},
	{DiscordUID: 100003, SelectedRaces: []string{"bw_protoss"}, PresenterHandle: "seed-bw-2"},
	{DiscordUID: 100004, SelectedRaces: []string{"sc2_terran"}, PresenterHandle: "seed-sc2-2"},
}

func main() {
	client := &http.Client{Timeout: 5 * time.Second}

	for _, p := range seedPlayers {
		payload, err := json.Marshal(p)
		if err != nil {
			log.Fatalf("marshal request for uid %d: %v", p.DiscordUID, err)
		}

		req, err := http.NewRequest(http.MethodPost, apiURL, bytes.NewReader(payload))
		if err != nil {
			log.Fatalf("build request for uid %d: %v", p.DiscordUID, err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			log.Fatalf("send request for uid %d: %v", p.DiscordUID, err)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		fmt.Printf("uid=%d status=%s body=%s\n", p.DiscordUID, resp.Status, body)
	}
}
