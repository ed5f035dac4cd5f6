package slp

// PDU is implemented by every decoded SLPv2 message. The dispatcher in the
// daemon and client switches on concrete type: a tagged union, no runtime
// introspection needed.
type PDU interface {
	FunctionID() uint8
	Header() Header
}

// ServiceRequest is function-id 1.
type ServiceRequest struct {
	Hdr                Header
	PreviousResponders string
	ServiceType        string
	ScopeList          string
	Predicate          string
	SPI                string
}

func (p *ServiceRequest) FunctionID() uint8 { return FuncServiceRequest }
func (p *ServiceRequest) Header() Header    { return p.Hdr }

// ServiceReply is function-id 2.
type ServiceReply struct {
	Hdr        Header
	ErrorCode  uint16
	URLEntries []URLEntry
}

func (p *ServiceReply) FunctionID() uint8 { return FuncServiceReply }
func (p *ServiceReply) Header() Header    { return p.Hdr }

// ServiceRegistration is function-id 3.
type ServiceRegistration struct {
	Hdr         Header
	URLEntry    URLEntry
	ServiceType string
	ScopeList   string
	AttrList    string
}

func (p *ServiceRegistration) FunctionID() uint8 { return FuncServiceRegistration }
func (p *ServiceRegistration) Header() Header    { return p.Hdr }

// ServiceDeregistration is function-id 4.
type ServiceDeregistration struct {
	Hdr       Header
	ScopeList string
	URLEntry  URLEntry
}

func (p *ServiceDeregistration) FunctionID() uint8 { return FuncServiceDeregistration }
func (p *ServiceDeregistration) Header() Header    { return p.Hdr }

// ServiceAcknowledge is function-id 5.
type ServiceAcknowledge struct {
	Hdr       Header
	ErrorCode uint16
}

func (p *ServiceAcknowledge) FunctionID() uint8 { return FuncServiceAcknowledge }
func (p *ServiceAcknowledge) Header() Header    { return p.Hdr }

// AttributeRequest is function-id 6.
type AttributeRequest struct {
	Hdr                Header
	PreviousResponders string
	URL                string
	ScopeList          string
	TagList            string
	SPI                string
}

func (p *AttributeRequest) FunctionID() uint8 { return FuncAttributeRequest }
func (p *AttributeRequest) Header() Header    { return p.Hdr }

// AttributeReply is function-id 7.
type AttributeReply struct {
	Hdr       Header
	ErrorCode uint16
	AttrList  string
}

func (p *AttributeReply) FunctionID() uint8 { return FuncAttributeReply }
func (p *AttributeReply) Header() Header    { return p.Hdr }
