package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jetchart/impostor/broadcast"
	"github.com/jetchart/impostor/config"
	"github.com/jetchart/impostor/game"
	"github.com/jetchart/impostor/logger"
	"github.com/jetchart/impostor/monitor"
	"github.com/jetchart/impostor/narrator"
	"github.com/jetchart/impostor/network"
	"github.com/jetchart/impostor/persistence"
	impostor_rpc "github.com/jetchart/impostor/rpc"
	"github.com/jetchart/impostor/services"
	"github.com/jetchart/impostor/session"
	"github.com/jetchart/impostor/timer"
	"github.com/jetchart/impostor/words"
)

// GameServer is the device gateway: it upgrades websockets, frames
// packets, and translates device messages into engine operations.
type GameServer struct {
	addr            string
	upgrader        websocket.Upgrader
	gameManager     *game.Manager
	sessionManager  *session.Manager
	sessionService  *services.SessionService
	broadcaster     broadcast.Broadcaster
	rpcServer       *impostor_rpc.Server
	wordPool        *words.Pool
	suggester       game.Suggester
	mon             *monitor.Monitor
	clock           *timer.Manager
	narratorTimeout time.Duration

	mutex    sync.Mutex
	gateways map[string]*narrator.Gateway

	shutdownChan chan struct{}
}

// NewGameServer wires the gateway. suggester may be nil; bots then use
// the local fallback pools only.
func NewGameServer(cfg *config.Config, store persistence.Store, suggester game.Suggester, mon *monitor.Monitor) *GameServer {
	s := &GameServer{
		addr:            cfg.Server.HTTPAddress,
		gameManager:     game.NewManager(),
		sessionManager:  session.NewManager(),
		sessionService:  services.NewSessionService(store),
		wordPool:        words.NewPool(nil),
		suggester:       suggester,
		mon:             mon,
		clock:           timer.NewManager(),
		narratorTimeout: cfg.Narrator.Timeout,
		gateways:        make(map[string]*narrator.Gateway),
		shutdownChan:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewGameBroadcaster(s.sessionManager)

	rpcServer, err := impostor_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	statsService := impostor_rpc.NewStatsService(s.sessionService)
	rpc.Register(statsService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.gameManager.CloseAll()
	s.clock.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.mon != nil {
		s.mon.IncConnectedDevices()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.mon != nil {
			s.mon.DecConnectedDevices()
		}
		if gameID := sess.GetGameID(); gameID != "" {
			s.dropGame(gameID)
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// dropGame closes and forgets the game of a disconnected device.
func (s *GameServer) dropGame(gameID string) {
	s.gameManager.Remove(gameID)
	s.mutex.Lock()
	delete(s.gateways, gameID)
	s.mutex.Unlock()
	if s.mon != nil {
		s.mon.SetActiveGames(s.gameManager.Count())
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	start := time.Now()
	if s.mon != nil {
		s.mon.IncMessagesReceived()
		defer func() { s.mon.ObserveMessageLatency(time.Since(start)) }()
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeSetup:
		s.handleSetup(sess, packet)
	case network.MsgTypeRevealSeen:
		s.handleRevealSeen(sess, packet)
	case network.MsgTypeDescribe:
		s.handleDescribe(sess, packet, false)
	case network.MsgTypeDictation:
		s.handleDescribe(sess, packet, true)
	case network.MsgTypeSkipTurn:
		s.handleSkipTurn(sess, packet)
	case network.MsgTypeStartVote:
		s.handleStartVote(sess)
	case network.MsgTypeCastVote:
		s.handleCastVote(sess, packet)
	case network.MsgTypeReset:
		s.handleReset(sess)
	case network.MsgTypeMute:
		s.handleMute(sess, packet)
	case network.MsgTypeNarrationDone:
		s.handleNarrationDone(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

type setupRequest struct {
	Players            []game.Player `json:"players"`
	ImpostorCount      int           `json:"impostorCount"`
	SelectedCategories []string      `json:"selectedCategories"`
	Difficulty         string        `json:"difficulty"`
	AllowImpostorHint  bool          `json:"allowImpostorHint"`
}

type setupReply struct {
	GameID string `json:"gameId"`
}

// narrationTransport routes narration requests to the game's sessions.
type narrationTransport struct {
	broadcaster broadcast.Broadcaster
	gameID      string
}

type narrationPayload struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (t *narrationTransport) SendNarration(id, text string) error {
	data, err := json.Marshal(narrationPayload{ID: id, Text: text})
	if err != nil {
		return err
	}
	return t.broadcaster.BroadcastToGame(t.gameID, network.MsgTypeNarration, data)
}

func (s *GameServer) handleSetup(sess *session.Session, packet *network.Packet) {
	if sess.GetGameID() != "" {
		s.sendNotice(sess, "ya hay una partida en curso en esta sesión")
		return
	}

	var req setupRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendNotice(sess, "configuración inválida")
		return
	}

	cfg := game.Config{
		Players:            req.Players,
		ImpostorCount:      req.ImpostorCount,
		SelectedCategories: req.SelectedCategories,
		Difficulty:         words.ParseDifficulty(req.Difficulty),
		AllowImpostorHint:  req.AllowImpostorHint,
	}

	eng, err := s.createEngine(cfg)
	if err != nil {
		s.sendNotice(sess, err.Error())
		return
	}
	sess.SetGameID(eng.ID())
	if s.mon != nil {
		s.mon.SetActiveGames(s.gameManager.Count())
	}

	data, _ := json.Marshal(setupReply{GameID: eng.ID()})
	sess.Send(network.MsgTypeSetupOK, data)

	eng.Start()
	logger.Log.Infof("Session %s started game %s", sess.GetID(), eng.ID())
}

// createEngine builds the per-game collaborators and registers the
// engine with the manager.
func (s *GameServer) createEngine(cfg game.Config) (*game.Engine, error) {
	// The transport needs the game ID, which only exists after the
	// engine is created; bind it afterwards.
	gateway := narrator.NewGateway(nil, s.narratorTimeout)

	deps := game.Deps{
		Logger:   logger.Log,
		Words:    s.wordPool,
		Narrator: gateway,
		Sessions: s.sessionService,
		Clock:    s.clock,
	}
	if s.suggester != nil {
		deps.Suggester = s.suggester
	}
	if s.mon != nil {
		deps.Observer = s.mon
	}

	eng, err := s.gameManager.Create(cfg, deps)
	if err != nil {
		return nil, err
	}

	gateway.Bind(&narrationTransport{broadcaster: s.broadcaster, gameID: eng.ID()})

	s.mutex.Lock()
	s.gateways[eng.ID()] = gateway
	s.mutex.Unlock()

	var phaseMutex sync.Mutex
	lastPhase := game.Phase("")
	eng.OnChange = func(snap game.Snapshot) {
		data, err := json.Marshal(snap)
		if err != nil {
			logger.Log.Errorf("marshaling snapshot for game %s: %v", snap.GameID, err)
			return
		}
		s.broadcaster.BroadcastToGame(snap.GameID, network.MsgTypeStateSync, data)

		// Pipelines publish snapshots concurrently; announce the
		// terminal phase once.
		phaseMutex.Lock()
		gameOver := snap.Phase.Terminal() && snap.Phase != lastPhase
		lastPhase = snap.Phase
		phaseMutex.Unlock()
		if gameOver {
			s.sendGameOver(eng, snap)
		}
	}
	eng.OnNotice = func(text string) {
		data, _ := json.Marshal(map[string]string{"text": text})
		s.broadcaster.BroadcastToGame(eng.ID(), network.MsgTypeNotice, data)
	}
	return eng, nil
}

type gameOverPayload struct {
	Phase  string       `json:"phase"`
	Word   string       `json:"word"`
	Result *game.Result `json:"result,omitempty"`
}

func (s *GameServer) sendGameOver(eng *game.Engine, snap game.Snapshot) {
	payload := gameOverPayload{
		Phase: snap.Phase.String(),
		Word:  snap.Word,
	}
	if result, ok := eng.Result(); ok {
		payload.Result = &result
	}
	data, _ := json.Marshal(payload)
	s.broadcaster.BroadcastToGame(snap.GameID, network.MsgTypeGameOver, data)
}

// engineFor resolves the session's game, or notifies the device.
func (s *GameServer) engineFor(sess *session.Session) *game.Engine {
	gameID := sess.GetGameID()
	if gameID == "" {
		s.sendNotice(sess, "no hay partida en curso")
		return nil
	}
	eng, err := s.gameManager.Get(gameID)
	if err != nil {
		s.sendNotice(sess, "no hay partida en curso")
		return nil
	}
	return eng
}

func (s *GameServer) sendNotice(sess *session.Session, text string) {
	data, _ := json.Marshal(map[string]string{"text": text})
	sess.Send(network.MsgTypeNotice, data)
}

func (s *GameServer) handleRevealSeen(sess *session.Session, packet *network.Packet) {
	eng := s.engineFor(sess)
	if eng == nil {
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendNotice(sess, "mensaje inválido")
		return
	}
	if err := eng.MarkSeen(req.Index); err != nil {
		s.sendNotice(sess, err.Error())
	}
}

func (s *GameServer) handleDescribe(sess *session.Session, packet *network.Packet, dictated bool) {
	eng := s.engineFor(sess)
	if eng == nil {
		return
	}
	var req struct {
		PlayerName string `json:"playerName"`
		Text       string `json:"text"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendNotice(sess, "mensaje inválido")
		return
	}
	text := req.Text
	if dictated {
		// Dictated speech arrives with trailing punctuation from the
		// recognizer.
		text = strings.TrimRight(strings.TrimSpace(text), ".,!?;:")
	}
	if err := eng.SubmitDescription(req.PlayerName, text); err != nil {
		s.sendNotice(sess, err.Error())
	}
}

func (s *GameServer) handleSkipTurn(sess *session.Session, packet *network.Packet) {
	eng := s.engineFor(sess)
	if eng == nil {
		return
	}
	var req struct {
		PlayerName string `json:"playerName"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendNotice(sess, "mensaje inválido")
		return
	}
	if err := eng.SkipTurn(req.PlayerName); err != nil {
		s.sendNotice(sess, err.Error())
	}
}

func (s *GameServer) handleStartVote(sess *session.Session) {
	eng := s.engineFor(sess)
	if eng == nil {
		return
	}
	if err := eng.StartVoting(); err != nil {
		s.sendNotice(sess, err.Error())
	}
}

func (s *GameServer) handleCastVote(sess *session.Session, packet *network.Packet) {
	eng := s.engineFor(sess)
	if eng == nil {
		return
	}
	var req struct {
		VoterName    string `json:"voterName"`
		VotedForName string `json:"votedForName"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendNotice(sess, "mensaje inválido")
		return
	}
	if err := eng.SubmitVote(req.VoterName, req.VotedForName); err != nil {
		s.sendNotice(sess, err.Error())
	}
}

func (s *GameServer) handleReset(sess *session.Session) {
	eng := s.engineFor(sess)
	if eng == nil {
		return
	}
	if err := eng.Reset(); err != nil {
		s.sendNotice(sess, err.Error())
	}
}

func (s *GameServer) handleMute(sess *session.Session, packet *network.Packet) {
	eng := s.engineFor(sess)
	if eng == nil {
		return
	}
	var req struct {
		Muted bool `json:"muted"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendNotice(sess, "mensaje inválido")
		return
	}
	eng.SetMuted(req.Muted)
}

func (s *GameServer) handleNarrationDone(sess *session.Session, packet *network.Packet) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	s.mutex.Lock()
	gateway := s.gateways[sess.GetGameID()]
	s.mutex.Unlock()
	if gateway != nil {
		gateway.Done(req.ID)
	}
}
