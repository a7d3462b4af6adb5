package pdu

import (
	"github.com/rcarmo/go-rdp-core/internal/core/buffer"
	"github.com/rcarmo/go-rdp-core/internal/core/rdperr"
)

// GCC client/server user data block header types (MS-RDPBCGR 2.2.1.3.1).
const (
	userDataHeaderCSCore     uint16 = 0xC001
	userDataHeaderCSSecurity uint16 = 0xC002
	userDataHeaderCSNet      uint16 = 0xC003
	userDataHeaderCSCluster  uint16 = 0xC004

	userDataHeaderSCCore           uint16 = 0x0C01
	userDataHeaderSCSecurity       uint16 = 0x0C02
	userDataHeaderSCNet            uint16 = 0x0C03
	userDataHeaderSCMsgChannel     uint16 = 0x0C04
	userDataHeaderSCMultitransport uint16 = 0x0C08
)

const rdpVersion5Plus uint32 = 0x00080004

// Early capability flags (MS-RDPBCGR 2.2.1.3.2).
const (
	ECFSupportErrInfoPDU        uint16 = 0x0001
	ECFWant32BPPSession         uint16 = 0x0002
	ECFSupportStatusInfoPDU     uint16 = 0x0004
	ECFStrongAsymmetricKeys     uint16 = 0x0008
	ECFValidConnectionType      uint16 = 0x0020
	ECFSupportMonitorLayoutPDU  uint16 = 0x0040
	ECFSupportNetCharAutodetect uint16 = 0x0080
	ECFSupportDynvcGFXProtocol  uint16 = 0x0100
	ECFSupportDynamicTimeZone   uint16 = 0x0200
	ECFSupportHeartbeatPDU      uint16 = 0x0400
)

// High color depth / supported color depths bit values (MS-RDPBCGR 2.2.1.3.2).
const (
	HighColor4BPP  uint16 = 0x0004
	HighColor8BPP  uint16 = 0x0008
	HighColor15BPP uint16 = 0x000F
	HighColor16BPP uint16 = 0x0010
	HighColor24BPP uint16 = 0x0018

	ColorDepth24BPPSupport uint16 = 0x0001
	ColorDepth16BPPSupport uint16 = 0x0002
	ColorDepth15BPPSupport uint16 = 0x0004
	ColorDepth32BPPSupport uint16 = 0x0008
)

// Encryption method/level flags shared by ClientSecurityData and
// ServerSecurityData (MS-RDPBCGR 2.2.1.3.3 / 2.2.1.4.3).
const (
	EncryptionMethod40Bit  uint32 = 0x00000001
	EncryptionMethod128Bit uint32 = 0x00000002
	EncryptionMethod56Bit  uint32 = 0x00000008
	EncryptionMethodFIPS   uint32 = 0x00000010
)

// ClientCoreData is TS_UD_CS_CORE (MS-RDPBCGR 2.2.1.3.2), the client's
// desktop geometry, color depth and keyboard settings.
type ClientCoreData struct {
	Version                uint32
	DesktopWidth           uint16
	DesktopHeight          uint16
	ColorDepth             uint16
	SASSequence            uint16
	KeyboardLayout         uint32
	ClientBuild            uint32
	ClientName             [32]byte
	KeyboardType           uint32
	KeyboardSubType        uint32
	KeyboardFunctionKey    uint32
	ImeFileName            [64]byte
	PostBeta2ColorDepth    uint16
	ClientProductID        uint16
	SerialNumber           uint32
	HighColorDepth         uint16
	SupportedColorDepths   uint16
	EarlyCapabilityFlags   uint16
	ClientDigProductID     [64]byte
	ConnectionType         uint8
	Pad1Octet              uint8
	ServerSelectedProtocol uint32
	DesktopPhysicalWidth   uint32
	DesktopPhysicalHeight  uint32
	DesktopOrientation     uint16
	DesktopScaleFactor     uint32
	DeviceScaleFactor      uint32
}

// NewClientCoreData builds the client core data block a connecting client
// advertises, deriving the color-depth bit fields from the single
// requested colorDepth the caller negotiated out-of-band.
func NewClientCoreData(selectedProtocol uint32, desktopWidth, desktopHeight uint16, colorDepth int, clientName string) *ClientCoreData {
	var highColorDepth, supportedColorDepths uint16
	earlyCapabilityFlags := ECFSupportErrInfoPDU

	switch colorDepth {
	case 32:
		highColorDepth = HighColor24BPP
		supportedColorDepths = ColorDepth32BPPSupport | ColorDepth24BPPSupport | ColorDepth16BPPSupport
		earlyCapabilityFlags |= ECFWant32BPPSession
	case 24:
		highColorDepth = HighColor24BPP
		supportedColorDepths = ColorDepth24BPPSupport | ColorDepth16BPPSupport
	case 15:
		highColorDepth = HighColor15BPP
		supportedColorDepths = ColorDepth15BPPSupport | ColorDepth16BPPSupport
	case 8:
		highColorDepth = HighColor8BPP
		supportedColorDepths = ColorDepth16BPPSupport
	default:
		highColorDepth = HighColor16BPP
		supportedColorDepths = ColorDepth16BPPSupport
	}

	d := &ClientCoreData{
		Version:                rdpVersion5Plus,
		DesktopWidth:           desktopWidth,
		DesktopHeight:          desktopHeight,
		ColorDepth:             0xCA01,
		SASSequence:            0xAA03,
		KeyboardLayout:         0x00000409,
		ClientBuild:            0x00000ece,
		KeyboardType:           4, // IBM 101/102-key
		KeyboardFunctionKey:    12,
		PostBeta2ColorDepth:    0xCA03,
		ClientProductID:        0x0001,
		HighColorDepth:         highColorDepth,
		SupportedColorDepths:   supportedColorDepths,
		EarlyCapabilityFlags:   earlyCapabilityFlags,
		ServerSelectedProtocol: selectedProtocol,
		DesktopPhysicalWidth:   uint32(float64(desktopWidth) * 25.4 / 96.0),
		DesktopPhysicalHeight:  uint32(float64(desktopHeight) * 25.4 / 96.0),
		DesktopScaleFactor:     100,
		DeviceScaleFactor:      100,
	}
	copy(d.ClientName[:], clientName)
	return d
}

// Encode writes the CS_CORE header followed by the fixed 230-byte body
// (block length 234 including the 4-byte header).
func (d *ClientCoreData) Encode(w *buffer.Writer) error {
	const dataLen uint16 = 234
	if err := w.WriteUint16LE(userDataHeaderCSCore); err != nil {
		return err
	}
	if err := w.WriteUint16LE(dataLen); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.Version); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.DesktopWidth); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.DesktopHeight); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.ColorDepth); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.SASSequence); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.KeyboardLayout); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.ClientBuild); err != nil {
		return err
	}
	if err := w.WriteBytes(d.ClientName[:]); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.KeyboardType); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.KeyboardSubType); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.KeyboardFunctionKey); err != nil {
		return err
	}
	if err := w.WriteBytes(d.ImeFileName[:]); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.PostBeta2ColorDepth); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.ClientProductID); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.SerialNumber); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.HighColorDepth); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.SupportedColorDepths); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.EarlyCapabilityFlags); err != nil {
		return err
	}
	if err := w.WriteBytes(d.ClientDigProductID[:]); err != nil {
		return err
	}
	if err := w.WriteUint8(d.ConnectionType); err != nil {
		return err
	}
	if err := w.WriteUint8(d.Pad1Octet); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.ServerSelectedProtocol); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.DesktopPhysicalWidth); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.DesktopPhysicalHeight); err != nil {
		return err
	}
	if err := w.WriteUint16LE(d.DesktopOrientation); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.DesktopScaleFactor); err != nil {
		return err
	}
	return w.WriteUint32LE(d.DeviceScaleFactor)
}

// ClientSecurityData is TS_UD_CS_SEC (MS-RDPBCGR 2.2.1.3.3).
type ClientSecurityData struct {
	EncryptionMethods    uint32
	ExtEncryptionMethods uint32
}

func (d *ClientSecurityData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(userDataHeaderCSSecurity); err != nil {
		return err
	}
	if err := w.WriteUint16LE(12); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.EncryptionMethods); err != nil {
		return err
	}
	return w.WriteUint32LE(d.ExtEncryptionMethods)
}

// ChannelDefinition is CHANNEL_DEF (MS-RDPBCGR 2.2.1.3.4.1): a static
// virtual channel the client asks the server to join it to.
type ChannelDefinition struct {
	Name    [8]byte
	Options uint32
}

func (c *ChannelDefinition) Encode(w *buffer.Writer) error {
	if err := w.WriteBytes(c.Name[:]); err != nil {
		return err
	}
	return w.WriteUint32LE(c.Options)
}

// ClientNetworkData is TS_UD_CS_NET (MS-RDPBCGR 2.2.1.3.4): the client's
// requested list of static virtual channels.
type ClientNetworkData struct {
	Channels []ChannelDefinition
}

// NewClientNetworkData builds a network data block from channel names,
// each NUL-padded or truncated to the 8-byte CHANNEL_DEF name field (a
// name of 8 or more bytes keeps no terminating NUL) and requesting only
// CHANNEL_OPTION_INITIALIZED.
func NewClientNetworkData(channelNames []string) *ClientNetworkData {
	d := &ClientNetworkData{Channels: make([]ChannelDefinition, 0, len(channelNames))}
	for _, name := range channelNames {
		cd := ChannelDefinition{Options: 0x80000000} // CHANNEL_OPTION_INITIALIZED
		copy(cd.Name[:], name)
		d.Channels = append(d.Channels, cd)
	}
	return d
}

func (d *ClientNetworkData) Encode(w *buffer.Writer) error {
	const headerLen = 8
	body := buffer.NewWriter(12 * len(d.Channels))
	for i := range d.Channels {
		if err := d.Channels[i].Encode(body); err != nil {
			return err
		}
	}
	if err := w.WriteUint16LE(userDataHeaderCSNet); err != nil {
		return err
	}
	if err := w.WriteUint16LE(uint16(headerLen + body.Len())); err != nil {
		return err
	}
	if err := w.WriteUint32LE(uint32(len(d.Channels))); err != nil {
		return err
	}
	return w.WriteBytes(body.Bytes())
}

// ClientClusterData is TS_UD_CS_CLUSTER (MS-RDPBCGR 2.2.1.3.5), used for
// session-broker redirection. NewClientUserDataSet leaves Cluster nil, so
// the block is only sent when a caller sets it.
type ClientClusterData struct {
	Flags               uint32
	RedirectedSessionID uint32
}

func (d *ClientClusterData) Encode(w *buffer.Writer) error {
	if err := w.WriteUint16LE(userDataHeaderCSCluster); err != nil {
		return err
	}
	if err := w.WriteUint16LE(12); err != nil {
		return err
	}
	if err := w.WriteUint32LE(d.Flags); err != nil {
		return err
	}
	return w.WriteUint32LE(d.RedirectedSessionID)
}

// ClientUserDataSet aggregates every client GCC user data block carried in
// the MCS Connect Initial's userData payload.
type ClientUserDataSet struct {
	Core     *ClientCoreData
	Security *ClientSecurityData
	Network  *ClientNetworkData
	Cluster  *ClientClusterData
}

// NewClientUserDataSet builds the full set a client sends during the
// Basic Settings Exchange phase (spec.md 4.D BasicSettingsExchange).
func NewClientUserDataSet(selectedProtocol uint32, desktopWidth, desktopHeight uint16, colorDepth int, clientName string, channelNames []string) *ClientUserDataSet {
	return &ClientUserDataSet{
		Core:     NewClientCoreData(selectedProtocol, desktopWidth, desktopHeight, colorDepth, clientName),
		Security: &ClientSecurityData{},
		Network:  NewClientNetworkData(channelNames),
	}
}

// Encode concatenates every present block, core first, matching the order
// Windows terminal servers expect.
func (ud *ClientUserDataSet) Encode(w *buffer.Writer) error {
	if err := ud.Core.Encode(w); err != nil {
		return err
	}
	if ud.Cluster != nil {
		if err := ud.Cluster.Encode(w); err != nil {
			return err
		}
	}
	if err := ud.Security.Encode(w); err != nil {
		return err
	}
	return ud.Network.Encode(w)
}

// ServerCoreData is TS_UD_SC_CORE (MS-RDPBCGR 2.2.1.4.2). Older servers
// truncate it after Version or ClientRequestedProtocols; Decode is told
// the declared body length up front and stops there.
type ServerCoreData struct {
	Version                  uint32
	ClientRequestedProtocols uint32
	EarlyCapabilityFlags     uint32
}

func (d *ServerCoreData) decode(r *buffer.Reader, bodyLen int) error {
	var err error
	if d.Version, err = r.Uint32LE(); err != nil {
		return err
	}
	if bodyLen <= 4 {
		return nil
	}
	if d.ClientRequestedProtocols, err = r.Uint32LE(); err != nil {
		return err
	}
	if bodyLen <= 8 {
		return nil
	}
	d.EarlyCapabilityFlags, err = r.Uint32LE()
	return err
}

// RSAPublicKey is RSA_PUBLIC_KEY (MS-RDPBCGR 2.2.1.4.3.1.1.1), carried
// inside a server proprietary certificate.
type RSAPublicKey struct {
	Magic   uint32
	KeyLen  uint32
	BitLen  uint32
	DataLen uint32
	PubExp  uint32
	Modulus []byte
}

func (k *RSAPublicKey) Decode(r *buffer.Reader) error {
	var err error
	if k.Magic, err = r.Uint32LE(); err != nil {
		return err
	}
	if k.KeyLen, err = r.Uint32LE(); err != nil {
		return err
	}
	if k.BitLen, err = r.Uint32LE(); err != nil {
		return err
	}
	if k.DataLen, err = r.Uint32LE(); err != nil {
		return err
	}
	if k.PubExp, err = r.Uint32LE(); err != nil {
		return err
	}
	k.Modulus, err = r.CopyBytes(int(k.KeyLen))
	return err
}

// ServerProprietaryCertificate is the non-X.509 certificate form a
// terminal server uses under the standard (non-enhanced) security layer
// (MS-RDPBCGR 2.2.1.4.3.1.1).
type ServerProprietaryCertificate struct {
	SigAlgID          uint32
	KeyAlgID          uint32
	PublicKeyBlobType uint16
	PublicKey         RSAPublicKey
	SignatureBlobType uint16
	SignatureBlob     []byte
}

func (c *ServerProprietaryCertificate) Decode(r *buffer.Reader) error {
	var err error
	if c.SigAlgID, err = r.Uint32LE(); err != nil {
		return err
	}
	if c.KeyAlgID, err = r.Uint32LE(); err != nil {
		return err
	}
	if c.PublicKeyBlobType, err = r.Uint16LE(); err != nil {
		return err
	}
	if _, err = r.Uint16LE(); err != nil { // publicKeyBlobLen, redundant with RSAPublicKey.DataLen
		return err
	}
	if err = c.PublicKey.Decode(r); err != nil {
		return err
	}
	if c.SignatureBlobType, err = r.Uint16LE(); err != nil {
		return err
	}
	sigLen, err := r.Uint16LE()
	if err != nil {
		return err
	}
	c.SignatureBlob, err = r.CopyBytes(int(sigLen))
	return err
}

// ServerCertificate is SERVER_CERTIFICATE (MS-RDPBCGR 2.2.1.4.3.1),
// dispatching on DwVersion's low bit between the proprietary form and a
// raw X.509 certificate chain.
type ServerCertificate struct {
	Version         uint32
	ProprietaryCert *ServerProprietaryCertificate
	X509Chain       []byte
}

func (c *ServerCertificate) decode(r *buffer.Reader, certLen int) error {
	var err error
	if c.Version, err = r.Uint32LE(); err != nil {
		return err
	}
	if c.Version&0x1 == 0x1 {
		c.ProprietaryCert = &ServerProprietaryCertificate{}
		return c.ProprietaryCert.Decode(r)
	}
	if certLen < 4 {
		return &rdperr.InvalidField{Name: "gcc.serverCertificate.len", Reason: "shorter than version field"}
	}
	c.X509Chain, err = r.CopyBytes(certLen - 4)
	return err
}

// ServerSecurityData is TS_UD_SC_SEC1 (MS-RDPBCGR 2.2.1.4.3): the
// negotiated encryption method/level and, for standard security, the
// server's random and certificate.
type ServerSecurityData struct {
	EncryptionMethod  uint32
	EncryptionLevel   uint32
	ServerRandom      []byte
	ServerCertificate *ServerCertificate
}

func (d *ServerSecurityData) Decode(r *buffer.Reader) error {
	var err error
	if d.EncryptionMethod, err = r.Uint32LE(); err != nil {
		return err
	}
	if d.EncryptionLevel, err = r.Uint32LE(); err != nil {
		return err
	}
	if d.EncryptionMethod == 0 && d.EncryptionLevel == 0 {
		return nil
	}
	randLen, err := r.Uint32LE()
	if err != nil {
		return err
	}
	certLen, err := r.Uint32LE()
	if err != nil {
		return err
	}
	if d.ServerRandom, err = r.CopyBytes(int(randLen)); err != nil {
		return err
	}
	if certLen == 0 {
		return nil
	}
	d.ServerCertificate = &ServerCertificate{}
	return d.ServerCertificate.decode(r, int(certLen))
}

// ServerNetworkData is TS_UD_SC_NET (MS-RDPBCGR 2.2.1.4.4): the MCS
// channel ID assigned to the I/O channel, plus one channel ID per static
// virtual channel the client requested, in request order.
type ServerNetworkData struct {
	IOChannelID    uint16
	ChannelIDArray []uint16
}

func (d *ServerNetworkData) Decode(r *buffer.Reader) error {
	var err error
	if d.IOChannelID, err = r.Uint16LE(); err != nil {
		return err
	}
	count, err := r.Uint16LE()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	d.ChannelIDArray = make([]uint16, count)
	for i := range d.ChannelIDArray {
		if d.ChannelIDArray[i], err = r.Uint16LE(); err != nil {
			return err
		}
	}
	if count%2 != 0 {
		return r.Skip(2) // pad field
	}
	return nil
}

// ServerMessageChannelData is TS_UD_SC_MCS_MSGCHANNEL (MS-RDPBCGR 2.2.1.4.5).
type ServerMessageChannelData struct {
	ChannelID uint16
}

// ServerMultitransportChannelData is TS_UD_SC_MULTITRANSPORT
// (MS-RDPBCGR 2.2.1.4.6).
type ServerMultitransportChannelData struct {
	Flags uint32
}

// ServerUserData aggregates every server GCC user data block carried in
// the MCS Connect Response's userData payload.
type ServerUserData struct {
	Core           *ServerCoreData
	Security       *ServerSecurityData
	Network        *ServerNetworkData
	MessageChannel *ServerMessageChannelData
	Multitransport *ServerMultitransportChannelData
}

// Decode walks the length-tagged sequence of user data blocks until r is
// exhausted, dispatching on each block's 2-byte header type.
func (ud *ServerUserData) Decode(r *buffer.Reader) error {
	for r.Len() > 0 {
		dataType, err := r.Uint16LE()
		if err != nil {
			return err
		}
		blockLen, err := r.Uint16LE()
		if err != nil {
			return err
		}
		bodyLen := int(blockLen) - 4
		if bodyLen < 0 {
			return &rdperr.InvalidField{Name: "gcc.serverUserData.blockLen", Reason: "shorter than header"}
		}

		switch dataType {
		case userDataHeaderSCCore:
			ud.Core = &ServerCoreData{}
			if err := ud.Core.decode(r, bodyLen); err != nil {
				return err
			}
		case userDataHeaderSCSecurity:
			ud.Security = &ServerSecurityData{}
			if err := ud.Security.Decode(r); err != nil {
				return err
			}
		case userDataHeaderSCNet:
			ud.Network = &ServerNetworkData{}
			if err := ud.Network.Decode(r); err != nil {
				return err
			}
		case userDataHeaderSCMsgChannel:
			ud.MessageChannel = &ServerMessageChannelData{}
			if ud.MessageChannel.ChannelID, err = r.Uint16LE(); err != nil {
				return err
			}
		case userDataHeaderSCMultitransport:
			ud.Multitransport = &ServerMultitransportChannelData{}
			if ud.Multitransport.Flags, err = r.Uint32LE(); err != nil {
				return err
			}
		default:
			if err := r.Skip(bodyLen); err != nil {
				return err
			}
		}
	}
	return nil
}
