package types

// ConnectionStatus represents the lifecycle state of the connector
type ConnectionStatus string

const (
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusConnecting   ConnectionStatus = "connecting"
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// String returns the string representation of the status
func (s ConnectionStatus) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s ConnectionStatus) IsValid() bool {
	switch s {
	case ConnectionStatusDisconnected, ConnectionStatusConnecting, ConnectionStatusConnected, ConnectionStatusError:
		return true
	default:
		return false
	}
}

// Label returns the display text of the status
func (s ConnectionStatus) Label() string {
	switch s {
	case ConnectionStatusConnected:
		return "接続済み"
	case ConnectionStatusConnecting:
		return "接続中"
	case ConnectionStatusError:
		return "エラー"
	default:
		return "未接続"
	}
}
