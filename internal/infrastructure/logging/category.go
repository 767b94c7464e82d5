package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
	Tracing         Category = "Tracing"
)

const (
	// General
	Startup  SubCategory = "Startup"
	Shutdown SubCategory = "Shutdown"

	// Internal
	Recover SubCategory = "Recover"

	// Validation
	DecodeBody SubCategory = "DecodeBody"

	// RequestResponse
	Api       SubCategory = "Api"
	StaticWeb SubCategory = "StaticWeb"

	// Tracing
	Exporter SubCategory = "Exporter"
)

const (
	AppName      ExtraKey = "AppName"
	Addr         ExtraKey = "Addr"
	Port         ExtraKey = "Port"
	Signal       ExtraKey = "Signal"
	RequestId    ExtraKey = "RequestId"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	Url          ExtraKey = "Url"
	Path         ExtraKey = "Path"
	StatusCode   ExtraKey = "StatusCode"
	BodySize     ExtraKey = "BodySize"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
