package diagnostic

// Factory generation codes.
const (
	CodeNoConstructor = "W_NO_CONSTRUCTOR"
	CodeFieldEmit     = "W_FIELD_EMIT"
	CodeNoBranches    = "W_NO_BRANCHES"
	CodeFieldEmitErr  = "E_FIELD_EMIT"
	CodeCompile       = "E_COMPILE"
	CodeRender        = "W_RENDER"
	CodeBuilt         = "I_BUILT"
)

// Mapping validation codes.
const (
	CodeUnknownType      = "E_UNKNOWN_TYPE"
	CodeUnknownPath      = "E_UNKNOWN_PATH"
	CodeDuplicateTarget  = "E_DUPLICATE_TARGET"
	CodeUnexportedSource = "E_UNEXPORTED_SOURCE"
	CodeDirection        = "E_DIRECTION"
	CodeConverters       = "E_CONVERTERS"
	CodeDuplicatePair    = "E_DUPLICATE_MAPPING"
)
