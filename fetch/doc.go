// Package fetch talks to the protected document source: a basic-auth HTTP
// server exposing a directory listing of substitution-plan documents.
//
// [Client.ListDocuments] scrapes the listing page for plan documents and
// their modification times, [Client.Fetch] retrieves a document's raw
// bytes, and [Client.Verify] checks a candidate login against the server.
// Credentials come from a [CredentialSource] so the most recently stored
// login is always used.
package fetch
