package canvas

import "prismora-backend/internal/models"

// ConnectionExists reports whether any connection joins idA and idB in
// either direction. Ports are not compared.
func ConnectionExists(connections []models.Connection, idA, idB string) bool {
	for _, c := range connections {
		from, to := c.FromPrismionID.String(), c.ToPrismionID.String()
		if (from == idA && to == idB) || (from == idB && to == idA) {
			return true
		}
	}
	return false
}

// FindPathAvoidingObstacles returns the waypoints a connector should follow
// from one port to another. Routing around obstacles is not implemented yet,
// so the result is always the direct segment.
// TODO: orthogonal routing around obstacles, skipping cards in excludeIDs.
func FindPathAvoidingObstacles(from, to Point, obstacles []models.Prismion, excludeIDs []string, fromPort, toPort models.Port) []Point {
	return []Point{from, to}
}

// ConnectorGeometry is everything a renderer needs to draw one connector.
type ConnectorGeometry struct {
	ConnectionID string      `json:"connectionId"`
	From         Point       `json:"from"`
	To           Point       `json:"to"`
	FromPort     models.Port `json:"fromPort"`
	ToPort       models.Port `json:"toPort"`
	Path         string      `json:"path"`
	Bounds       Rect        `json:"bounds"`
}

// BuildConnectorGeometry derives anchor points, path and bounds for c.
// Ports missing on c are filled from FindOptimalPorts.
func BuildConnectorGeometry(c models.Connection, from, to models.Prismion) ConnectorGeometry {
	fromPort, toPort := c.FromPort, c.ToPort
	if !fromPort.Valid() || !toPort.Valid() {
		ports := FindOptimalPorts(from, to)
		if !fromPort.Valid() {
			fromPort = ports.FromPort
		}
		if !toPort.Valid() {
			toPort = ports.ToPort
		}
	}

	fromPos := CalculatePortPosition(from, fromPort)
	toPos := CalculatePortPosition(to, toPort)
	path := GenerateConnectionPath(fromPos, toPos, fromPort, toPort)

	return ConnectorGeometry{
		ConnectionID: c.ID(),
		From:         fromPos,
		To:           toPos,
		FromPort:     fromPort,
		ToPort:       toPort,
		Path:         path,
		Bounds:       GetConnectorBounds(fromPos, toPos, path),
	}
}
