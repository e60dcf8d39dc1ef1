// Package spotify normalizes open.spotify.com links into model.Item values.
//
// With client credentials it uses the Web API (client-credentials grant) and
// pages through album and playlist tracks. Without credentials only single
// tracks are supported, through the public oEmbed endpoint enriched with the
// track page's meta tags.
package spotify
