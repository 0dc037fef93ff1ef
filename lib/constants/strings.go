package constants

const (
	// StringsEmpty - a empty space
	StringsEmpty = ""

	// StringsWhitespace - a white space
	StringsWhitespace = " "

	// StringsPKG - the package abbreviation
	StringsPKG = "pkg"

	// StringsFunc - the function abbreviation
	StringsFunc = "func"

	// StringsHost - the host tag
	StringsHost = "host"
)
