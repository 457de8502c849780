package render

// Shader sources are embedded so the binary has no asset files to locate.

// terrainVertexShader unpacks one packed corner per vertex. Bit layout must
// match voxel.PackVertex: x(5) y(6) z(5) face(3) block(8). The chunk's
// world origin comes from the SSBO slot selected by gl_BaseInstance, which
// the indirect draw command carries per chunk.
const terrainVertexShader = `#version 460 core

layout (location = 0) in uint packedVertex;

layout (std430, binding = 0) buffer ChunkOrigins {
    vec4 origins[];
};

uniform mat4 view;
uniform mat4 projection;

out vec3 fragColor;
flat out uint fragFace;

const vec3 blockColors[8] = vec3[8](
    vec3(0.0, 0.0, 0.0),    // air, never drawn
    vec3(0.33, 0.65, 0.27), // grass
    vec3(0.45, 0.32, 0.22), // dirt
    vec3(0.50, 0.50, 0.52), // stone
    vec3(0.86, 0.80, 0.58), // sand
    vec3(0.93, 0.95, 0.97), // snow
    vec3(0.15, 0.35, 0.70), // water
    vec3(0.42, 0.40, 0.38)  // gravel
);

const float faceLight[6] = float[6](
    0.80, // +X
    0.70, // -X
    1.00, // +Y
    0.45, // -Y
    0.85, // +Z
    0.60  // -Z
);

void main() {
    uint x = packedVertex & 31u;
    uint y = (packedVertex >> 5) & 63u;
    uint z = (packedVertex >> 11) & 31u;
    uint face = (packedVertex >> 16) & 7u;
    uint block = (packedVertex >> 19) & 255u;

    vec3 origin = origins[gl_BaseInstance].xyz;
    vec3 worldPos = origin + vec3(float(x), float(y), float(z));

    fragColor = blockColors[block & 7u] * faceLight[min(face, 5u)];
    fragFace = face;
    gl_Position = projection * view * vec4(worldPos, 1.0);
}
`

const terrainFragmentShader = `#version 460 core

in vec3 fragColor;
flat in uint fragFace;

out vec4 outColor;

uniform vec3 fogColor;
uniform float fogDensity;

void main() {
    float depth = gl_FragCoord.z / gl_FragCoord.w;
    float fog = clamp(exp(-fogDensity * depth), 0.0, 1.0);
    outColor = vec4(mix(fogColor, fragColor, fog), 1.0);
}
`