// Command server wires the lobby, table actors, and websocket gateway
// into one listening process: the whole of internal/ composed, nothing
// more. The transport never calls into the lobby or the tables directly,
// only through the Router seam internal/transport defines.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/okihara/plo-game-sub001/internal/adminauth"
	"github.com/okihara/plo-game-sub001/internal/history"
	"github.com/okihara/plo-game-sub001/internal/lobby"
	"github.com/okihara/plo-game-sub001/internal/table"
	"github.com/okihara/plo-game-sub001/internal/transport"
)

func main() {
	recorder, historyMode, err := history.NewRecorderFromEnv()
	if err != nil {
		log.Fatalf("[Server] failed to init history recorder: %v", err)
	}
	defer recorder.Close()

	admin, err := adminauth.New(os.Getenv("ADMIN_PASSWORD"))
	if err != nil {
		log.Fatalf("[Server] failed to init admin auth: %v", err)
	}

	lby := lobby.New(defaultTableConfig(), recorder, admin)
	gw := transport.New(lby)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/admin/login", handleAdminLogin(admin))
	mux.HandleFunc("/admin/tables", handleListTables(lby))

	addr := strings.TrimSpace(os.Getenv("SERVER_ADDR"))
	if addr == "" {
		addr = ":18080"
	}
	log.Printf("[Server] history mode: %s", historyMode)
	log.Printf("[Server] starting websocket server on %s", addr)
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil {
		log.Fatalf("[Server] failed to start: %v", err)
	}
}

// defaultTableConfig mirrors the teacher's defaultConfig, generalized to
// the frozen PLO buy-in multiple (spec 6: DEFAULT_BUYIN = 200*bigBlind).
func defaultTableConfig() table.TableConfig {
	bigBlind := envInt64("TABLE_BIG_BLIND", 100)
	smallBlind := envInt64("TABLE_SMALL_BLIND", 50)
	return table.TableConfig{
		MaxPlayers: uint16(envInt64("TABLE_MAX_PLAYERS", table.MaxPlayers)),
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		MinBuyIn:   bigBlind * 50,
		MaxBuyIn:   bigBlind * int64(table.DefaultBuyInMultiple),
		IsFastFold: strings.EqualFold(os.Getenv("TABLE_FAST_FOLD"), "true"),
	}
}

func envInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("[Server] invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func handleAdminLogin(admin *adminauth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		token, err := admin.Login(req.Password)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Token string `json:"token"`
		}{Token: token})
	}
}

func handleListTables(lby *lobby.Lobby) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(lby.ListTables())
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
