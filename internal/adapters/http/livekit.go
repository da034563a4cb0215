package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/livekit/protocol/auth"
	"github.com/rs/zerolog/log"

	"github.com/parleyhq/parley/internal/config"
)

// LiveKitTokenHandler mints a room-scoped access token for the external
// media provider. The server never carries media itself.
func LiveKitTokenHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			UserName string `json:"userName"`
			RoomName string `json:"roomName"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.UserName == "" || req.RoomName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing userName or roomName"})
			return
		}
		if cfg.LiveKitAPIKey == "" || cfg.LiveKitAPISecret == "" || cfg.LiveKitURL == "" {
			log.Error().Str("module", "adapters.http").Msg("livekit credentials not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "livekit configuration missing"})
			return
		}

		at := auth.NewAccessToken(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
		grant := &auth.VideoGrant{
			RoomJoin: true,
			Room:     req.RoomName,
		}
		grant.SetCanPublish(true)
		grant.SetCanSubscribe(true)
		at.AddGrant(grant).
			SetIdentity(req.UserName).
			SetValidFor(time.Hour)

		token, err := at.ToJWT()
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("livekit token")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
			return
		}

		log.Info().Str("module", "adapters.http").Str("user", req.UserName).Str("room", req.RoomName).Msg("livekit token issued")
		c.JSON(http.StatusOK, gin.H{"token": token, "url": cfg.LiveKitURL})
	}
}
