package config

// Sample is the commented configuration written by `gomeme init`.
const Sample = `# GoMeme configuration. Environment variables (GOMEME_*, OPENAI_API_KEY)
# override values from this file; command-line flags override both.

addr: ":5000"

# Finished memes are written here and served under /static/memes/.
meme_dir: static/memes
# Offline placeholder pictures are written here.
upload_dir: static/uploads

# unique: every meme gets its own file (artifact_keep most recent are kept).
# shared: every meme overwrites artifact_name; writes are serialized.
artifact_mode: unique
artifact_name: meme.png
artifact_keep: 32

# Empty log_dir logs to stdout only.
log_dir: ""

font:
  path: ""      # TTF/OTF file; empty uses the embedded Go Regular font
  size: 24
  dpi: 72

layout:
  horizontal_margin: 20
  bottom_margin: 20

style:
  fill: "#ffffff"
  stroke: "#000000"
  stroke_width: 2

fetch:
  timeout: 30s
  max_bytes: 16777216
  max_pixels: 40000000
  # Downloads from loopback, private and link-local addresses are refused
  # unless this is true. Leave it off when /api/render is reachable.
  allow_private_hosts: false

openai:
  api_key: ""   # leave empty to use the offline placeholder generators
  base_url: https://api.openai.com/v1
  chat_model: gpt-4o-mini
  image_model: dall-e-2
  image_size: 512x512
  timeout: 60s
`
