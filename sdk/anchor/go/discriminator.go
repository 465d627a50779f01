package anchor

import (
	"crypto/sha256"
	"encoding/hex"
)

const DiscriminatorSize = 8

// Discriminator is the 8-byte prefix identifying an account type, an event
// type or an instruction.
type Discriminator [DiscriminatorSize]byte

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}

func AccountDiscriminator(name string) Discriminator {
	return hashDiscriminator("account:" + name)
}

func EventDiscriminator(name string) Discriminator {
	return hashDiscriminator("event:" + name)
}

// InstructionDiscriminator takes the snake_case instruction name.
func InstructionDiscriminator(name string) Discriminator {
	return hashDiscriminator("global:" + name)
}

func hashDiscriminator(preimage string) Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}
