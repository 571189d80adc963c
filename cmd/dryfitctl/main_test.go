package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCoachCreate(t *testing.T) {
	out, err := run(t, "coach", "create", "--email", "maria@coach.test", "--name", "Maria", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "maria@coach.test")
}

func TestCoachCreate_Validation(t *testing.T) {
	_, err := run(t, "coach", "create", "--email", "maria@coach.test", "--name", "Maria", "--password", "123")
	assert.ErrorContains(t, err, "password")

	_, err = run(t, "coach", "create", "--email", "maria@coach.test")
	assert.ErrorContains(t, err, "required flag")
}

func TestInviteGenerate_UnknownCoach(t *testing.T) {
	_, err := run(t, "invite", "generate", "--coach", "ghost@coach.test")
	assert.ErrorContains(t, err, "no account with e-mail ghost@coach.test")
}

func TestSeedCategories(t *testing.T) {
	out, err := run(t, "seed", "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Strength")
	assert.Contains(t, out, "Mobility")
}

func TestMigrate_Memory(t *testing.T) {
	_, err := run(t, "migrate")
	assert.NoError(t, err)
}

func TestMissingSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	assert.ErrorContains(t, cmd.Execute(), "jwt.secret")
}
