package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
)

const sensorNodeStatusIdle = "IDLE"

// TraceRequest is the body of a signal trace request
type TraceRequest struct {
	Address  string `json:"address" binding:"required,ipv4"`
	NodeType string `json:"nodeType" binding:"required,oneof=GATEWAY PORT DEVICE"`
}

// SensorNode is the node deployed to trace an error
type SensorNode struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Label  string `json:"label"`
}

// TraceResponse describes the trace opened for an error
type TraceResponse struct {
	ErrorID  string     `json:"errorId"`
	DeviceID string     `json:"deviceId"`
	Node     SensorNode `json:"node"`
	Log      []string   `json:"log"`
}

func (s *server) handleTraceError(c *gin.Context) {
	id := c.Param("id")
	telemetryError, found := s.findError(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "error not found"})
		return
	}

	var req TraceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Debug("invalid trace request", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid trace request: %s", err.Error())})
		return
	}

	node := SensorNode{
		ID:     fmt.Sprintf("NODE_%d", time.Now().UnixMilli()),
		Type:   req.NodeType,
		Status: sensorNodeStatusIdle,
		Label:  req.Address,
	}

	log.Info("signal trace opened", "error", id, "device", telemetryError.Metadata.DeviceID,
		"node type", node.Type, "address", node.Label)

	c.JSON(http.StatusOK, TraceResponse{
		ErrorID:  telemetryError.ID,
		DeviceID: telemetryError.Metadata.DeviceID,
		Node:     node,
		Log: []string{
			"[INFO] SIGNAL TRACE INITIATED: " + telemetryError.ID,
			"[SYS] DEPLOYING SENSOR NODE TO GRID...",
			"[NET] NODE ESTABLISHED AT " + req.Address,
			"[MESH] MESH RECALIBRATION IN PROGRESS...",
		},
	})
}

func (s *server) findError(id string) (common.TelemetryError, bool) {
	for _, telemetryError := range s.store.Errors() {
		if telemetryError.ID == id {
			return telemetryError, true
		}
	}

	return common.TelemetryError{}, false
}
