// Package ftps uploads staged files to an FTP server over explicit TLS.
//
// The session is opened once per run with AUTH TLS, authenticated, and
// switched to a protected data channel (PBSZ 0, PROT P) before any STOR.
package ftps
