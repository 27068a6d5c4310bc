package types

// ClientConfig contains configuration for a backend language server process
type ClientConfig struct {
	Command               string
	Args                  []string
	WorkingDir            string
	InitializationOptions interface{} // Optional initialization options from config
}
