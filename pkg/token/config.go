package token

// Config holds the signing secret shared by every token purpose. Per-purpose
// max ages are policy and live with the flows that verify tokens.
type Config struct {
	Secret string `env:"TOKEN_SECRET,required"`
}
