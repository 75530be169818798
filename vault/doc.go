// Package vault manages the installation's symmetric encryption key.
//
// It provides a load-or-create lifecycle for a single key persisted to
// disk. There is no rotation and no multi-key support: the key generated
// on first use lives for the life of the installation, protected only by
// filesystem permissions.
package vault
