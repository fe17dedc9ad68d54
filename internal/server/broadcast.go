package server

import "github.com/palemoky/kaat-color/internal/protocol"

// GetOnlineCount 在线连接数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// seatedCounts 在房间内与在大厅的连接数
func (s *Server) seatedCounts() (seated, lobby int) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		if c.GetRoom() != "" {
			seated++
		} else {
			lobby++
		}
	}
	return seated, lobby
}

// BroadcastToLobby 通知所有未入座的连接，牌桌上的玩家不受打扰
func (s *Server) BroadcastToLobby(msg *protocol.Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		if c.GetRoom() == "" {
			c.SendMessage(msg)
		}
	}
}
