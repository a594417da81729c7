package epub

// digestCSS is Kindle-friendly styling embedded into every generated book.
const digestCSS = `
body {
    font-family: Georgia, "Times New Roman", serif;
    line-height: 1.6;
    margin: 0;
    padding: 0;
    color: #1a1a1a;
}

h1 {
    font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
    font-size: 2em;
    font-weight: 700;
    margin: 1em 0 0.5em 0;
    color: #111;
    border-bottom: 3px solid #e74c3c;
    padding-bottom: 0.3em;
}

h2 {
    font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
    font-size: 1.5em;
    font-weight: 600;
    margin: 1.5em 0 0.5em 0;
    color: #222;
    border-bottom: 2px solid #3498db;
    padding-bottom: 0.2em;
}

h3 {
    font-family: "Helvetica Neue", Helvetica, Arial, sans-serif;
    font-size: 1.2em;
    font-weight: 600;
    margin: 1em 0 0.3em 0;
    color: #333;
}

p {
    margin: 0.8em 0;
    text-align: justify;
}

a {
    color: #2980b9;
    text-decoration: none;
}

.cover {
    text-align: center;
    margin-top: 4em;
}

.cover .subtitle {
    font-style: italic;
    color: #555;
}

.cover .stats {
    color: #777;
    font-size: 0.9em;
}

.article {
    margin: 1.2em 0;
    padding-bottom: 1em;
    border-bottom: 1px solid #ddd;
}

.article-meta {
    font-size: 0.85em;
    color: #666;
    margin: 0.2em 0;
}

.article-domain {
    font-size: 0.8em;
    color: #888;
    margin: 0.1em 0;
}

.article-summary {
    margin: 0.5em 0;
}

.article-content {
    margin: 0.8em 0;
    font-size: 0.95em;
}

.tag {
    display: inline-block;
    font-size: 0.75em;
    background: #eee;
    border-radius: 3px;
    padding: 0 0.4em;
    margin-right: 0.3em;
    color: #555;
}

table {
    border-collapse: collapse;
    width: 100%;
}

td, th {
    border: 1px solid #ccc;
    padding: 0.3em;
}
`
