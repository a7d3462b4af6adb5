package conn

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/gcc"
	"github.com/rcarmo/go-rdp-core/internal/core/mcs"
	"github.com/rcarmo/go-rdp-core/internal/core/pdu"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
	"github.com/rcarmo/go-rdp-core/internal/core/tpkt"
	"github.com/rcarmo/go-rdp-core/internal/core/x224"
)

// phase names the top-level connection states spec.md's state machine
// enumerates. Sub-steps within a phase (the channel-join round trips, the
// capability/synchronize burst inside ConnectionFinalization) are tracked by
// private counters on the Machine rather than becoming their own phase,
// since only the two externalized suspension points need their own Outcome
// kind.
type phase int

const (
	phaseConnectionInitiationSendRequest phase = iota
	phaseConnectionInitiationWaitConfirm
	phaseEnhancedSecurityUpgrade
	phaseCredssp
	phaseBasicSettingsExchange
	phaseChannelConnection
	phaseSecureSettingsExchange
	phaseLicensing
	phaseConnectionFinalization
	phaseConnected
)

// Machine is the client-side RDP connection state machine. It never touches
// a socket: Step consumes exactly the bytes of one logical server message
// and appends any bytes the client must send to out; StepNoInput starts the
// machine with no server bytes to parse. After an externalized suspension
// point the caller resumes with Step: after a TLS upgrade it passes the
// server's public key, after a CredSSP network request the response.
type Machine struct {
	cfg *Config

	phase phase

	requestedProtocol pdu.NegotiationProtocol
	selectedProtocol  pdu.NegotiationProtocol

	credssp *credsspMachine

	userID      uint16
	ioChannelID uint16
	channels    []ChannelResult
	pendingJoin int // index into channels awaiting a ChannelJoinConfirm

	shareID          uint32
	serverCapability []pdu.CapabilitySet

	finalizeStep int // a finalizeAwait* constant: 0=demand active awaited,1..4=server synchronize/control-cooperate/control-granted/fontmap awaited,5=done
}

// New creates a Machine ready to begin the connection sequence. The caller
// must have already established the TCP connection; the first Step call
// drives the X.224 Connection Request.
func New(cfg *Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	requested := pdu.NegotiationProtocolRDP
	if cfg.RequestNLA {
		requested |= pdu.NegotiationProtocolHybrid
	}
	return &Machine{cfg: cfg, requestedProtocol: requested}, nil
}

// NextHint always reports ok=false: the machine never knows a byte count in
// advance. Callers frame each server PDU themselves (TPKT or fast-path
// length prefix) and pass Step one complete PDU.
func (m *Machine) NextHint() (need int, ok bool) {
	return 0, false
}

// StepNoInput advances the machine with no new server bytes, for phases that
// begin by sending without first waiting on the peer (ConnectionInitiation's
// opening move).
func (m *Machine) StepNoInput(out *buffer.Writer) (Outcome, error) {
	return m.step(nil, out)
}

// Step advances the machine with one logical unit of server input (a
// complete TPKT/X.224 frame, the server's public key right after a
// KindSecurityUpgrade, or the CredSSP response to an outstanding
// NetworkRequest) and a writer to collect bytes the caller must transmit.
func (m *Machine) Step(input []byte, out *buffer.Writer) (Outcome, error) {
	return m.step(input, out)
}

func (m *Machine) step(input []byte, out *buffer.Writer) (Outcome, error) {
	switch m.phase {
	case phaseConnectionInitiationSendRequest:
		return m.sendConnectionRequest(out)
	case phaseConnectionInitiationWaitConfirm:
		return m.recvConnectionConfirm(input, out)
	case phaseEnhancedSecurityUpgrade:
		return m.enterBasicSettingsExchange(out)
	case phaseCredssp:
		return m.stepCredssp(input, out)
	case phaseBasicSettingsExchange:
		if input == nil {
			return m.sendBasicSettingsExchange(out)
		}
		return m.recvBasicSettingsExchange(input, out)
	case phaseChannelConnection:
		return m.stepChannelConnection(input, out)
	case phaseSecureSettingsExchange:
		return m.sendSecureSettingsExchange(out)
	case phaseLicensing:
		return m.recvLicensing(input)
	case phaseConnectionFinalization:
		return m.stepConnectionFinalization(input, out)
	default:
		return Outcome{}, &rdperr.InvalidField{Name: "conn.machine.phase", Reason: "step called after Connected"}
	}
}

// --- Connection Initiation -------------------------------------------------

func (m *Machine) sendConnectionRequest(out *buffer.Writer) (Outcome, error) {
	req := pdu.ClientConnectionRequest{
		Cookie: "mstshash",
		NegotiationRequest: pdu.NegotiationRequest{
			RequestedProtocols: m.requestedProtocol,
		},
	}
	cr := req.Serialize()
	if cr == nil {
		return Outcome{}, &rdperr.InvalidField{Name: "conn.connectionRequest", Reason: "failed to encode"}
	}

	creq := x224.ConnectionRequest{UserData: cr}
	inner := buffer.NewWriter(creq.Size())
	if err := creq.Encode(inner); err != nil {
		return Outcome{}, err
	}
	frame := tpkt.Frame{Payload: inner.Bytes()}
	if err := frame.Encode(out); err != nil {
		return Outcome{}, err
	}

	m.phase = phaseConnectionInitiationWaitConfirm
	return Outcome{Kind: KindWritten}, nil
}

func (m *Machine) recvConnectionConfirm(input []byte, out *buffer.Writer) (Outcome, error) {
	var frame tpkt.Frame
	if err := frame.Decode(buffer.NewReader(input)); err != nil {
		return Outcome{}, err
	}
	var cc x224.ConnectionConfirm
	if err := cc.Decode(buffer.NewReader(frame.Payload)); err != nil {
		return Outcome{}, err
	}

	var confirm pdu.ServerConnectionConfirm
	if err := confirm.Decode(buffer.NewReader(cc.UserData)); err != nil {
		return Outcome{}, err
	}

	if confirm.Type.IsFailure() {
		return Outcome{}, &rdperr.NegotiationFailure{
			Step: "connectionInitiation",
			Code: uint32(confirm.FailureCode()),
			Name: confirm.FailureCode().String(),
		}
	}

	m.selectedProtocol = confirm.SelectedProtocol()

	switch {
	case m.selectedProtocol.IsHybrid():
		m.phase = phaseCredssp
		m.credssp = newCredsspMachine(m.cfg)
		return Outcome{Kind: KindSecurityUpgrade, Security: SecurityProtocolTLS}, nil
	case m.selectedProtocol.IsSSL():
		m.phase = phaseEnhancedSecurityUpgrade
		return Outcome{Kind: KindSecurityUpgrade, Security: SecurityProtocolTLS}, nil
	default:
		return m.enterBasicSettingsExchange(out)
	}
}

func (m *Machine) enterBasicSettingsExchange(out *buffer.Writer) (Outcome, error) {
	m.phase = phaseBasicSettingsExchange
	return m.sendBasicSettingsExchange(out)
}

func (m *Machine) stepCredssp(input []byte, out *buffer.Writer) (Outcome, error) {
	outcome, done, err := m.credssp.step(input, out)
	if err != nil {
		return Outcome{}, err
	}
	if !done {
		return outcome, nil
	}
	m.credssp = nil
	m.phase = phaseBasicSettingsExchange
	return m.sendBasicSettingsExchange(out)
}

// --- Basic Settings Exchange ------------------------------------------------

func (m *Machine) sendBasicSettingsExchange(out *buffer.Writer) (Outcome, error) {
	core := pdu.NewClientCoreData(uint32(m.requestedProtocol), m.cfg.DesktopWidth, m.cfg.DesktopHeight, m.cfg.ColorDepth, m.cfg.ClientName)
	userData := &pdu.ClientUserDataSet{
		Core:     core,
		Security: &pdu.ClientSecurityData{},
		Network:  pdu.NewClientNetworkData(m.cfg.ChannelNames),
	}
	udWriter := buffer.NewWriter(512)
	if err := userData.Encode(udWriter); err != nil {
		return Outcome{}, err
	}

	ccr := gcc.NewConferenceCreateRequest(udWriter.Bytes())
	ccrBytes := ccr.Serialize()

	initial := mcs.NewClientMCSConnectInitial(ccrBytes)
	body := mcs.NewConnectInitialPDU(initial).Serialize()
	if body == nil {
		return Outcome{}, &rdperr.InvalidField{Name: "conn.connectInitial", Reason: "failed to encode"}
	}
	if err := writeX224(out, body); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindWritten}, nil
}

func (m *Machine) recvBasicSettingsExchange(input []byte, out *buffer.Writer) (Outcome, error) {
	x224Payload, err := readX224(input)
	if err != nil {
		return Outcome{}, err
	}

	var resp mcs.ConnectPDU
	if err := resp.Decode(buffer.NewReader(x224Payload)); err != nil {
		return Outcome{}, err
	}
	if resp.ServerConnectResponse == nil {
		return Outcome{}, &rdperr.UnexpectedMessageType{Phase: "basicSettingsExchange", Got: "mcsConnectPDU", Allowed: []string{"connectResponse"}}
	}

	var ccResp gcc.ConferenceCreateResponse
	if err := ccResp.Decode(buffer.NewReader(resp.ServerConnectResponse.UserData)); err != nil {
		return Outcome{}, err
	}

	var serverUserData pdu.ServerUserData
	if err := serverUserData.Decode(buffer.NewReader(ccResp.UserData)); err != nil {
		return Outcome{}, err
	}
	if serverUserData.Network != nil {
		m.ioChannelID = serverUserData.Network.IOChannelID
		m.channels = make([]ChannelResult, 0, len(m.cfg.ChannelNames))
		for i, name := range m.cfg.ChannelNames {
			if i < len(serverUserData.Network.ChannelIDArray) {
				m.channels = append(m.channels, ChannelResult{Name: name, ChannelID: serverUserData.Network.ChannelIDArray[i]})
			}
		}
	}

	m.phase = phaseChannelConnection
	return m.stepChannelConnection(nil, out)
}

// --- Channel Connection ------------------------------------------------

// The erect-domain/attach-user/N-channel-join round trips this phase drives
// are distinguished by which DomainPDU variant the server replies with
// (ServerAttachUserConfirm vs ServerChannelJoinConfirm), not by a separate
// step counter.

func (m *Machine) stepChannelConnection(input []byte, out *buffer.Writer) (Outcome, error) {
	if input == nil {
		return m.sendErectDomainAndAttachUser(out)
	}
	return m.recvChannelConnection(input, out)
}

func (m *Machine) sendErectDomainAndAttachUser(out *buffer.Writer) (Outcome, error) {
	erect := mcs.DomainPDU{Application: erectDomainRequestApp, ClientErectDomainRequest: &mcs.ClientErectDomainRequest{}}
	erectWire := buffer.NewWriter(8)
	if err := erect.Encode(erectWire); err != nil {
		return Outcome{}, err
	}
	if err := writeX224(out, erectWire.Bytes()); err != nil {
		return Outcome{}, err
	}

	attach := mcs.DomainPDU{Application: attachUserRequestApp}
	attachWire := buffer.NewWriter(4)
	if err := attach.Encode(attachWire); err != nil {
		return Outcome{}, err
	}
	if err := writeX224(out, attachWire.Bytes()); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: KindWritten}, nil
}

func (m *Machine) recvChannelConnection(input []byte, out *buffer.Writer) (Outcome, error) {
	x224Payload, err := readX224(input)
	if err != nil {
		return Outcome{}, err
	}
	var d mcs.DomainPDU
	if err := d.Decode(buffer.NewReader(x224Payload)); err != nil {
		return Outcome{}, err
	}

	switch {
	case d.ServerAttachUserConfirm != nil:
		m.userID = d.ServerAttachUserConfirm.Initiator
		m.pendingJoin = 0
		return m.joinNextChannel(out)
	case d.ServerChannelJoinConfirm != nil:
		if m.pendingJoin > 0 && m.pendingJoin-1 < len(m.channels) {
			m.channels[m.pendingJoin-1].ChannelID = d.ServerChannelJoinConfirm.ChannelId
		}
		return m.joinNextChannel(out)
	default:
		return Outcome{}, &rdperr.UnexpectedMessageType{Phase: "channelConnection", Got: "mcsDomainPDU", Allowed: []string{"attachUserConfirm", "channelJoinConfirm"}}
	}
}

// joinNextChannel sends the next pending ChannelJoinRequest (the I/O
// channel first, then each named static channel in request order) or, once
// all channels have joined, advances to SecureSettingsExchange.
func (m *Machine) joinNextChannel(out *buffer.Writer) (Outcome, error) {
	total := len(m.channels) + 1 // +1 for the I/O channel itself
	if m.pendingJoin >= total {
		m.phase = phaseSecureSettingsExchange
		return m.sendSecureSettingsExchange(out)
	}

	var target uint16
	if m.pendingJoin == 0 {
		target = m.ioChannelID
	} else {
		target = m.channels[m.pendingJoin-1].ChannelID
	}
	joinPDU := mcs.DomainPDU{
		Application:              channelJoinRequestApp,
		ClientChannelJoinRequest: &mcs.ClientChannelJoinRequest{Initiator: m.userID, ChannelId: target},
	}
	joinWire := buffer.NewWriter(16)
	if err := joinPDU.Encode(joinWire); err != nil {
		return Outcome{}, err
	}
	if err := writeX224(out, joinWire.Bytes()); err != nil {
		return Outcome{}, err
	}
	m.pendingJoin++
	return Outcome{Kind: KindWritten}, nil
}

// --- Secure Settings Exchange ------------------------------------------------

func (m *Machine) sendSecureSettingsExchange(out *buffer.Writer) (Outcome, error) {
	info := pdu.NewClientInfo(m.cfg.Domain, m.cfg.Username, m.cfg.Password)
	if m.cfg.RemoteApp {
		info.Flags |= pdu.InfoFlagRail
	}
	w := buffer.NewWriter(256)
	if err := info.Encode(w); err != nil {
		return Outcome{}, err
	}
	if err := writeSendDataRequest(out, m.userID, m.ioChannelID, w.Bytes()); err != nil {
		return Outcome{}, err
	}
	m.phase = phaseLicensing
	return Outcome{Kind: KindWritten}, nil
}

// --- Licensing ------------------------------------------------

func (m *Machine) recvLicensing(input []byte) (Outcome, error) {
	x224Payload, err := readX224(input)
	if err != nil {
		return Outcome{}, err
	}
	_, payload, err := readSendDataIndication(x224Payload)
	if err != nil {
		return Outcome{}, err
	}

	var lic pdu.ServerLicenseErrorPDU
	if err := lic.Decode(buffer.NewReader(payload)); err != nil {
		return Outcome{}, err
	}
	switch lic.Preamble.MsgType {
	case pdu.LicensingMsgNewLicense:
		m.phase = phaseConnectionFinalization
		return Outcome{Kind: KindWritten}, nil
	case pdu.LicensingMsgErrorAlert:
		if !lic.IsValidClient() {
			return Outcome{}, &rdperr.NegotiationFailure{Step: "licensing", Code: uint32(lic.Message.ErrorCode)}
		}
		m.phase = phaseConnectionFinalization
		return Outcome{Kind: KindWritten}, nil
	default:
		return Outcome{}, &rdperr.UnexpectedMessageType{Phase: "licensing", Got: "licensingPreamble", Allowed: []string{"newLicense", "errorAlert"}}
	}
}

// --- Connection Finalization ------------------------------------------------

// Sub-steps, in order: capabilitiesExchange (demand active / confirm
// active), then the client's Synchronize/Control-Cooperate/
// Control-RequestControl/FontList burst, then the server's mirrored
// Synchronize/Control-Cooperate/Control-Granted/FontMap burst.
const (
	finalizeAwaitDemandActive = iota
	finalizeAwaitSynchronize
	finalizeAwaitControlCooperate
	finalizeAwaitControlGranted
	finalizeAwaitFontMap
	finalizeDone
)

func (m *Machine) stepConnectionFinalization(input []byte, out *buffer.Writer) (Outcome, error) {
	if input == nil {
		return Outcome{Kind: KindNeedMore}, nil
	}

	x224Payload, err := readX224(input)
	if err != nil {
		return Outcome{}, err
	}
	_, payload, err := readSendDataIndication(x224Payload)
	if err != nil {
		return Outcome{}, err
	}

	switch m.finalizeStep {
	case finalizeAwaitDemandActive:
		var demand pdu.DemandActivePDU
		if err := demand.Decode(buffer.NewReader(payload)); err != nil {
			return Outcome{}, err
		}
		m.shareID = demand.ShareID
		m.serverCapability = demand.CombinedCapabilities

		confirm := buildConfirmActive(m.shareID, m.userID, m.cfg)
		w := buffer.NewWriter(confirm.Size())
		if err := confirm.Encode(w); err != nil {
			return Outcome{}, err
		}
		if err := writeSendDataRequest(out, m.userID, m.ioChannelID, w.Bytes()); err != nil {
			return Outcome{}, err
		}
		if err := m.sendFinalizationBurst(out); err != nil {
			return Outcome{}, err
		}
		m.finalizeStep = finalizeAwaitSynchronize
		return Outcome{Kind: KindWritten}, nil

	case finalizeAwaitSynchronize:
		var data pdu.DataPDU
		if err := data.Decode(buffer.NewReader(payload)); err != nil {
			return Outcome{}, err
		}
		if data.Synchronize == nil {
			return Outcome{}, &rdperr.UnexpectedMessageType{Phase: "connectionFinalization", Got: "shareData", Allowed: []string{"synchronize"}}
		}
		m.finalizeStep = finalizeAwaitControlCooperate
		return Outcome{Kind: KindNeedMore}, nil

	case finalizeAwaitControlCooperate:
		var data pdu.DataPDU
		if err := data.Decode(buffer.NewReader(payload)); err != nil {
			return Outcome{}, err
		}
		if data.Control == nil || data.Control.Action != pdu.ControlActionCooperate {
			return Outcome{}, &rdperr.UnexpectedMessageType{Phase: "connectionFinalization", Got: "shareData", Allowed: []string{"controlCooperate"}}
		}
		m.finalizeStep = finalizeAwaitControlGranted
		return Outcome{Kind: KindNeedMore}, nil

	case finalizeAwaitControlGranted:
		var data pdu.DataPDU
		if err := data.Decode(buffer.NewReader(payload)); err != nil {
			return Outcome{}, err
		}
		if data.Control == nil || data.Control.Action != pdu.ControlActionGrantedControl {
			return Outcome{}, &rdperr.UnexpectedMessageType{Phase: "connectionFinalization", Got: "shareData", Allowed: []string{"controlGranted"}}
		}
		m.finalizeStep = finalizeAwaitFontMap
		return Outcome{Kind: KindNeedMore}, nil

	case finalizeAwaitFontMap:
		var data pdu.DataPDU
		if err := data.Decode(buffer.NewReader(payload)); err != nil {
			return Outcome{}, err
		}
		if data.FontMap == nil {
			return Outcome{}, &rdperr.UnexpectedMessageType{Phase: "connectionFinalization", Got: "shareData", Allowed: []string{"fontMap"}}
		}
		m.finalizeStep = finalizeDone
		m.phase = phaseConnected
		return Outcome{Kind: KindReady, Result: ConnectionResult{
			ShareID:          m.shareID,
			UserID:           m.userID,
			IOChannelID:      m.ioChannelID,
			Channels:         m.channels,
			ServerCapability: m.serverCapability,
			DesktopWidth:     m.cfg.DesktopWidth,
			DesktopHeight:    m.cfg.DesktopHeight,
			ColorDepth:       m.cfg.ColorDepth,
		}}, nil

	default:
		return Outcome{}, &rdperr.InvalidField{Name: "conn.machine.finalizeStep", Reason: "unreachable"}
	}
}

// sendFinalizationBurst writes the client's Synchronize, Control-Cooperate,
// Control-RequestControl and FontList PDUs back to back, matching the
// teacher's connectionFinalization burst (MS-RDPBCGR 1.3.1.1 step 10-13).
func (m *Machine) sendFinalizationBurst(out *buffer.Writer) error {
	sync := pdu.NewSynchronizePDUData(1002)
	if err := m.sendDataPDU(out, pdu.ShareDataTypeSynchronize, sync); err != nil {
		return err
	}
	cooperate := pdu.NewControlPDUData(pdu.ControlActionCooperate)
	if err := m.sendDataPDU(out, pdu.ShareDataTypeControl, cooperate); err != nil {
		return err
	}
	request := pdu.NewControlPDUData(pdu.ControlActionRequestControl)
	if err := m.sendDataPDU(out, pdu.ShareDataTypeControl, request); err != nil {
		return err
	}
	fontList := pdu.NewFontListPDUData()
	return m.sendDataPDU(out, pdu.ShareDataTypeFontList, fontList)
}

type shareDataBody interface {
	Encode(*buffer.Writer) error
}

func (m *Machine) sendDataPDU(out *buffer.Writer, kind pdu.ShareDataType, body shareDataBody) error {
	bw := buffer.NewWriter(32)
	if err := body.Encode(bw); err != nil {
		return err
	}

	data := &pdu.DataPDU{
		ControlHeader: pdu.ShareControlHeader{PDUSource: m.userID},
		DataHeader: pdu.ShareDataHeader{
			ShareID:  m.shareID,
			StreamID: pdu.StreamIDLossless,
			PDUType2: kind,
		},
	}
	switch kind {
	case pdu.ShareDataTypeSynchronize:
		data.Synchronize = body.(*pdu.SynchronizePDUData)
	case pdu.ShareDataTypeControl:
		data.Control = body.(*pdu.ControlPDUData)
	case pdu.ShareDataTypeFontList:
		data.FontList = body.(*pdu.FontListPDUData)
	}

	pw := buffer.NewWriter(64)
	if err := data.Encode(pw); err != nil {
		return err
	}
	return writeSendDataRequest(out, m.userID, m.ioChannelID, pw.Bytes())
}

// MCS domain application tags (T.125 section 7, PER CHOICE index), mirrored
// here since mcs.DomainPDU.Application is a plain uint8 and the package's
// own named constants are unexported.
const (
	erectDomainRequestApp  uint8 = 1
	attachUserRequestApp   uint8 = 10
	channelJoinRequestApp  uint8 = 14
)
