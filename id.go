package imap

// IDFields is the set of key/value pairs exchanged by the ID command
// (RFC 2971). Both the client's request and the server's response use the
// same shape; well-known keys include "name", "version", "os", "vendor", but
// servers and clients may send arbitrary fields.
type IDFields map[string]string
