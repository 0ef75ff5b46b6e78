package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdillenkofer/proteus/internal/sim"
	"github.com/jdillenkofer/proteus/internal/store"
)

// GetState returns the full serialized simulation, the same shape a restore
// accepts. Useful for debugging and for taking ad-hoc client-side saves.
func GetState(m *sim.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Snapshot())
	}
}

// SaveSnapshot persists a named snapshot to the database.
func SaveSnapshot(m *sim.Manager, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name string `json:"name"`
		}
		// Name is optional; an empty body gets a timestamped default.
		_ = c.BindJSON(&req)
		if req.Name == "" {
			req.Name = "snapshot-" + time.Now().UTC().Format("20060102-150405")
		}

		data, err := json.Marshal(m.Snapshot())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize state"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		id, err := st.SaveNamed(ctx, req.Name, data)
		if err != nil {
			log.Printf("[SIM] failed to save snapshot %q: %v", req.Name, err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot storage unavailable"})
			return
		}
		// Refresh the live slot too so a restart resumes from this point.
		if err := st.SaveLive(ctx, data); err != nil {
			log.Printf("[SIM] failed to refresh live snapshot: %v", err)
		}

		c.JSON(http.StatusOK, gin.H{"id": id, "name": req.Name})
	}
}

// ListSnapshots returns recent named snapshots.
func ListSnapshots(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		rows, err := st.ListNamed(ctx, limit)
		if err != nil {
			log.Printf("[SIM] failed to list snapshots: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot storage unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"snapshots": rows})
	}
}

// RestoreSnapshot hot-reloads simulation state. The request either names a
// stored snapshot by ID or carries a raw snapshot document inline.
func RestoreSnapshot(m *sim.Manager, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ID       int64           `json:"id"`
			Snapshot json.RawMessage `json:"snapshot"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id or snapshot required"})
			return
		}

		data := []byte(req.Snapshot)
		if len(data) == 0 {
			if req.ID <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "id or snapshot required"})
				return
			}
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			var err error
			data, err = st.LoadNamed(ctx, req.ID)
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
				return
			}
			if err != nil {
				log.Printf("[SIM] failed to load snapshot %d: %v", req.ID, err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot storage unavailable"})
				return
			}
		}

		if err := m.RestoreJSON(data); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed snapshot: " + err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"restored": true, "balls": m.BallCount()})
	}
}

// ResetSim discards the scene and rebuilds with a fresh chamber shuffle.
func ResetSim(m *sim.Manager, st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.Reset()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		st.ClearLive(ctx)
		log.Printf("[SIM] reset by admin request")
		c.JSON(http.StatusOK, gin.H{"reset": true})
	}
}
