// Package queryfarmer provides a token-preserving translation service core.
//
// Text is shielded before it reaches an external translation provider:
// template placeholders, markdown emphasis, inline code, URLs and numbers are
// swapped for opaque markers and restored afterwards. Results are kept in a
// bounded, time-limited cache so repeated requests never reach the provider.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/srivastavaprakhar/queryFARMER"
//	    "github.com/srivastavaprakhar/queryFARMER/cache"
//	    "github.com/srivastavaprakhar/queryFARMER/provider"
//	)
//
//	func main() {
//	    p := provider.NewGoogleProvider(provider.GoogleConfig{
//	        APIKey: os.Getenv("TRANSLATION_API_KEY"),
//	    })
//
//	    t := queryfarmer.NewTranslator(p,
//	        queryfarmer.WithCache(cache.NewInMemoryCache[queryfarmer.TranslationResult](86400, 10000)),
//	    )
//
//	    result, err := t.Translate(context.Background(), queryfarmer.Request{
//	        Text:           "Spray {{dose}} ml per **acre**",
//	        SourceLang:     "en",
//	        TargetLang:     "hi",
//	        PreserveTokens: true,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result.TranslatedText)
//	}
package queryfarmer
