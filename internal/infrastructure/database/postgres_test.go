package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionString(t *testing.T) {
	got := ConnectionString("https://abcd.supabase.co/", "secret")
	assert.Equal(t, "host=db.abcd.supabase.co port=6543 user=postgres password=secret dbname=postgres sslmode=require", got)
}

func TestNewSupabaseClient_必須項目(t *testing.T) {
	_, err := NewSupabaseClient("", "key")
	assert.Error(t, err)
	_, err = NewSupabaseClient("https://abcd.supabase.co", "")
	assert.Error(t, err)
}
